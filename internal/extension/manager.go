package extension

import (
	"context"
	"fmt"
	"strings"

	"github.com/kispace-io/appspace/internal/hostapi"
	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/registry"
	"github.com/kispace-io/appspace/internal/resolver"
)

// Declaration status values reported by List.
const (
	StatusLoaded  = "loaded"  // in the in-memory repository
	StatusCached  = "cached"  // in the persistent store
	StatusMissing = "missing" // must be downloaded
	StatusRemote  = "remote"  // GitHub entry, resolved on sync
)

// ExtensionStatus represents the status of a single declaration.
type ExtensionStatus struct {
	Declaration
	Kind   SourceKind
	Status string
}

// SyncResult is the outcome of syncing one declaration.
type SyncResult struct {
	Source     Source
	Package    *loader.Package     // registry sources
	EntryPoint *resolver.EntryPoint // github sources
	Err        error
}

// Manager edits a project's declarations and syncs them. The registry client
// should be the one the loader was built with so download URLs agree.
type Manager struct {
	root     string
	registry *registry.Client
	loader   *loader.Loader
	resolver *resolver.Resolver
	host     *hostapi.Host
}

// NewManager returns a Manager for the project rooted at root. host may be
// nil, in which case Sync loads packages without registering contributions.
func NewManager(root string, reg *registry.Client, ld *loader.Loader, res *resolver.Resolver, host *hostapi.Host) *Manager {
	return &Manager{root: root, registry: reg, loader: ld, resolver: res, host: host}
}

// ProjectPath returns the managed project file.
func (m *Manager) ProjectPath() string { return ProjectPath(m.root) }

// Add declares d in the project file, creating the file if needed.
func (m *Manager) Add(d Declaration) error {
	path := m.ProjectPath()
	p, err := LoadProject(path)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	if err := p.Add(d); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if err := SaveProject(path, p); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Remove drops the declaration with key from the project file and
// deactivates the extension if the host has it running.
func (m *Manager) Remove(ctx context.Context, key string) error {
	path := m.ProjectPath()
	p, err := LoadProject(path)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	if err := p.Remove(key); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if err := SaveProject(path, p); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	if m.host != nil {
		if err := m.host.Deactivate(ctx, key); err != nil {
			log.WarnErr(log.CatLoader, "deactivate after remove failed", err, "extension", key)
		}
	}
	return nil
}

// List returns the status of every declaration. Checking a pinned registry
// declaration against the persistent store promotes a hit into the
// in-memory repository.
func (m *Manager) List(ctx context.Context) ([]ExtensionStatus, error) {
	p, err := LoadProject(m.ProjectPath())
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	result := make([]ExtensionStatus, 0, len(p.Extensions))
	for _, d := range p.Extensions {
		st := ExtensionStatus{Declaration: d, Kind: SourceRegistry, Status: StatusMissing}
		switch {
		case d.GitHub != "":
			st.Kind = SourceGitHub
			st.Status = StatusRemote
		case m.loaded(d):
			st.Status = StatusLoaded
		case d.Version != "" && m.loader.CachedPackage(ctx, d.ID, d.Version) != nil:
			st.Status = StatusCached
		}
		result = append(result, st)
	}
	return result, nil
}

func (m *Manager) loaded(d Declaration) bool {
	pkg, ok := m.loader.Repository().Get(d.ID)
	return ok && (d.Version == "" || pkg.Version == d.Version)
}

// Sync acquires every declaration in order. Registry declarations pinned to a
// version go straight to the loader, which serves them from cache when it
// can; unpinned ones ask the registry for the latest release first. GitHub
// declarations are resolved to their entry-point URL. A failing declaration
// does not stop the rest; the returned error lists every failure.
func (m *Manager) Sync(ctx context.Context) ([]SyncResult, error) {
	p, err := LoadProject(m.ProjectPath())
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	sources, err := BuildSources(p)
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, 0, len(sources))
	var errs []string
	for _, src := range sources {
		res := SyncResult{Source: src}
		switch src.Kind {
		case SourceRegistry:
			res.Package, res.Err = m.syncRegistry(ctx, src)
		case SourceGitHub:
			res.EntryPoint, res.Err = m.resolver.ResolveEntryPoint(ctx, src.Ref)
		}
		if res.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", src.Key, res.Err))
		}
		results = append(results, res)
	}

	if len(errs) > 0 {
		return results, fmt.Errorf("some extensions failed to sync:\n  %s", strings.Join(errs, "\n  "))
	}
	return results, nil
}

func (m *Manager) syncRegistry(ctx context.Context, src Source) (*loader.Package, error) {
	ext := &registry.Extension{Namespace: src.Namespace, Name: src.Name, Version: src.Version}
	if src.Version == "" {
		latest, err := m.registry.GetExtension(ctx, src.Namespace, src.Name, "")
		if err != nil {
			return nil, err
		}
		ext = latest
	}

	pkg, err := m.loader.LoadFromRegistryExtension(ctx, ext)
	if err != nil {
		return nil, err
	}
	if m.host != nil {
		if _, err := m.host.Activate(ctx, pkg, nil); err != nil {
			return pkg, err
		}
	}
	return pkg, nil
}
