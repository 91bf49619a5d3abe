package hostapi

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/log"
)

// Activator starts an extension against its host API.
type Activator interface {
	Activate(ctx context.Context, api *API, rc *RuntimeContext) error
}

// Deactivator is implemented by activators that need a shutdown hook.
type Deactivator interface {
	Deactivate(ctx context.Context) error
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(ctx context.Context, api *API, rc *RuntimeContext) error

// Activate calls f.
func (f ActivatorFunc) Activate(ctx context.Context, api *API, rc *RuntimeContext) error {
	return f(ctx, api, rc)
}

type activation struct {
	emulator  *Emulator
	activator Activator
}

type mementos struct {
	global, workspace *Memento
}

// Host keeps one Emulator per active extension. Safe for concurrent use.
type Host struct {
	registry  CommandRegistry
	resources ResourceProvider
	opts      []Option

	mu     sync.Mutex
	active map[string]*activation
	states map[string]mementos
}

// NewHost returns a Host binding every emulator to registry and resources.
// opts are applied to each emulator it creates.
func NewHost(registry CommandRegistry, resources ResourceProvider, opts ...Option) *Host {
	return &Host{
		registry:  registry,
		resources: resources,
		opts:      opts,
		active:    make(map[string]*activation),
		states:    make(map[string]mementos),
	}
}

// Activate creates an emulator for pkg, registers its contributions and runs
// act. An extension already active under the same id is deactivated first.
// act may be nil to register contributions only. A failed activation is
// disposed and not retained. State mementos outlive deactivation and are
// handed to the next instance of the same extension.
func (h *Host) Activate(ctx context.Context, pkg *loader.Package, act Activator) (*Emulator, error) {
	if err := h.Deactivate(ctx, pkg.ExtensionID); err != nil {
		log.WarnErr(log.CatHost, "deactivating previous instance failed", err, "extension", pkg.ExtensionID)
	}

	st := h.state(pkg.ExtensionID)
	opts := append([]Option{WithGlobalState(st.global), WithWorkspaceState(st.workspace)}, h.opts...)
	em := NewEmulator(pkg, h.registry, h.resources, opts...)
	n := em.RegisterContributions()
	log.Debug(log.CatHost, "contributions registered", "extension", pkg.ExtensionID, "commands", n)

	if act != nil {
		if err := act.Activate(ctx, em.BuildAPI(), em.Context()); err != nil {
			em.Dispose()
			return nil, fmt.Errorf("activating %s: %w", pkg.ExtensionID, err)
		}
	}

	h.mu.Lock()
	h.active[pkg.ExtensionID] = &activation{emulator: em, activator: act}
	h.mu.Unlock()
	log.Info(log.CatHost, "extension activated", "extension", pkg.ExtensionID, "version", pkg.Version)
	return em, nil
}

func (h *Host) state(extensionID string) mementos {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[extensionID]
	if !ok {
		st = mementos{global: NewMemento(), workspace: NewMemento()}
		h.states[extensionID] = st
	}
	return st
}

// Deactivate runs the activator's Deactivate hook, if any, and disposes the
// extension's emulator. Unknown ids are ignored.
func (h *Host) Deactivate(ctx context.Context, extensionID string) error {
	h.mu.Lock()
	a, ok := h.active[extensionID]
	delete(h.active, extensionID)
	h.mu.Unlock()
	if !ok {
		return nil
	}

	var err error
	if d, ok := a.activator.(Deactivator); ok {
		if derr := d.Deactivate(ctx); derr != nil {
			err = fmt.Errorf("deactivating %s: %w", extensionID, derr)
		}
	}
	a.emulator.Dispose()
	return err
}

// Emulator returns the emulator of an active extension.
func (h *Host) Emulator(extensionID string) (*Emulator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.active[extensionID]
	if !ok {
		return nil, false
	}
	return a.emulator, true
}

// Active returns the active extension ids, sorted.
func (h *Host) Active() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.active))
	for id := range h.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close deactivates every extension, logging failures.
func (h *Host) Close(ctx context.Context) {
	for _, id := range h.Active() {
		if err := h.Deactivate(ctx, id); err != nil {
			log.WarnErr(log.CatHost, "deactivate failed", err, "extension", id)
		}
	}
}
