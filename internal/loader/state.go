package loader

// State is a step of the load state machine.
type State int

const (
	StateUnresolved State = iota
	StateDownloading
	StateUnpacked
	StateCached
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateDownloading:
		return "downloading"
	case StateUnpacked:
		return "unpacked"
	case StateCached:
		return "cached"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// ProgressFunc receives every state transition of a load. err is non-nil
// only with StateFailed.
type ProgressFunc func(extensionID string, state State, err error)
