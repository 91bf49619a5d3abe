package registry

import (
	"errors"
	"fmt"
)

// ErrRegistry matches every error returned by Client when the registry could
// not be reached or answered with a non-success status.
var ErrRegistry = errors.New("registry request failed")

// RegistryError describes a failed registry request.
type RegistryError struct {
	Op         string // search, get, versions
	URL        string
	StatusCode int // 0 on transport or decode failure
	Err        error
}

func (e *RegistryError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("registry %s %s: status %d", e.Op, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("registry %s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("registry %s %s failed", e.Op, e.URL)
	}
}

func (e *RegistryError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRegistry) match any RegistryError.
func (e *RegistryError) Is(target error) bool { return target == ErrRegistry }

// IsNotFound reports whether err is a registry 404.
func IsNotFound(err error) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.StatusCode == 404
}
