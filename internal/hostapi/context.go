package hostapi

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kispace-io/appspace/internal/manifest"
)

// ExtensionInfo is the identity and manifest of a loaded extension.
type ExtensionInfo struct {
	ID            string                    `json:"id"`
	Version       string                    `json:"version"`
	ExtensionPath string                    `json:"extensionPath"`
	PackageJSON   *manifest.PackageManifest `json:"packageJSON"`
}

// RuntimeContext is the per-extension host context handed to activation.
type RuntimeContext struct {
	InstanceID     string
	ExtensionPath  string
	Subscriptions  *DisposableList
	GlobalState    *Memento
	WorkspaceState *Memento
	Extension      ExtensionInfo
}

func newRuntimeContext(info ExtensionInfo, global, workspace *Memento) *RuntimeContext {
	if global == nil {
		global = NewMemento()
	}
	if workspace == nil {
		workspace = NewMemento()
	}
	return &RuntimeContext{
		InstanceID:     uuid.NewString(),
		ExtensionPath:  info.ExtensionPath,
		Subscriptions:  &DisposableList{},
		GlobalState:    global,
		WorkspaceState: workspace,
		Extension:      info,
	}
}

// Memento is an opaque per-extension key-value map. Safe for concurrent use.
type Memento struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemento returns an empty Memento.
func NewMemento() *Memento {
	return &Memento{values: make(map[string]any)}
}

// Get returns the value for key, or def when unset.
func (m *Memento) Get(key string, def any) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

// Update sets key to value. A nil value removes the key.
func (m *Memento) Update(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.values, key)
		return
	}
	m.values[key] = value
}

// Keys returns the set keys in lexical order.
func (m *Memento) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
