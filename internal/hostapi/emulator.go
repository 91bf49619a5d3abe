package hostapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/workbench"
)

// Option configures an Emulator.
type Option func(*emulatorOptions)

type emulatorOptions struct {
	globalState    *Memento
	workspaceState *Memento
}

// WithGlobalState shares a global Memento with the emulator.
func WithGlobalState(m *Memento) Option {
	return func(o *emulatorOptions) { o.globalState = m }
}

// WithWorkspaceState shares a workspace Memento with the emulator.
func WithWorkspaceState(m *Memento) Option {
	return func(o *emulatorOptions) { o.workspaceState = m }
}

// Emulator is the extension host for one loaded package. It implements every
// capability interface; BuildAPI bundles them.
type Emulator struct {
	pkg       *loader.Package
	registry  CommandRegistry
	resources ResourceProvider
	rc        *RuntimeContext

	mu        sync.Mutex
	handlers  map[string]any // local handler index: command id -> callback
	listeners int
	disposed  bool
}

// NewEmulator binds pkg to the workbench collaborators. resources may be nil,
// in which case every file operation fails with ErrNoWorkspace.
func NewEmulator(pkg *loader.Package, registry CommandRegistry, resources ResourceProvider, opts ...Option) *Emulator {
	var o emulatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	info := ExtensionInfo{
		ID:            pkg.ExtensionID,
		Version:       pkg.Version,
		ExtensionPath: "/extensions/" + pkg.ExtensionID,
		PackageJSON:   pkg.Manifest,
	}
	return &Emulator{
		pkg:       pkg,
		registry:  registry,
		resources: resources,
		rc:        newRuntimeContext(info, o.globalState, o.workspaceState),
		handlers:  make(map[string]any),
	}
}

// Context returns the extension's runtime context.
func (e *Emulator) Context() *RuntimeContext { return e.rc }

// ExtensionID returns the bound extension identifier.
func (e *Emulator) ExtensionID() string { return e.pkg.ExtensionID }

// BuildAPI returns the host object to inject into the extension.
func (e *Emulator) BuildAPI() *API {
	return &API{
		Commands:   e,
		Workspace:  e,
		FS:         e,
		Window:     e,
		Extensions: e,
	}
}

// RegisterCommand binds callback to id. thisArg, when non-nil, is passed as
// the callback's first argument ahead of the invocation arguments, so a
// method expression such as (*T).Run can be bound to a receiver. The returned
// disposable removes id from this emulator's handler index and withdraws the
// registry handler unless a later registration has replaced it.
func (e *Emulator) RegisterCommand(id string, callback any, thisArg any) (Disposable, error) {
	inv, err := newInvoker(callback)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil, ErrDisposed
	}
	e.handlers[id] = callback
	e.mu.Unlock()

	if !e.registry.HasCommand(id) {
		e.registry.RegisterCommand(workbench.Command{ID: id, Source: e.pkg.ExtensionID})
	}

	extID := e.pkg.ExtensionID
	unregister := e.registry.RegisterHandler(id, func(ctx context.Context, params map[string]any) (any, error) {
		args := argsFrom(params)
		if thisArg != nil {
			args = append([]any{thisArg}, args...)
		}
		log.Debug(log.CatHost, "executing command", "extension", extID, "command", id, "args", len(args))
		return inv.call(ctx, args)
	})

	d := NewDisposable(func() error {
		e.mu.Lock()
		delete(e.handlers, id)
		e.mu.Unlock()
		unregister()
		return nil
	})
	e.rc.Subscriptions.Add(d)
	return d, nil
}

// ExecuteCommand runs id through the registry with args packed as
// {"args": args}.
func (e *Emulator) ExecuteCommand(ctx context.Context, id string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return e.registry.ExecuteCommand(ctx, id, map[string]any{"args": args})
}

// GetCommands returns the ids registered through this emulator, sorted.
func (e *Emulator) GetCommands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.handlers))
	for id := range e.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetConfiguration returns an empty configuration view for section.
func (e *Emulator) GetConfiguration(section string) *Configuration {
	return &Configuration{section: section}
}

// OnDidChangeConfiguration retains listener. No events are emitted.
func (e *Emulator) OnDidChangeConfiguration(listener func(ConfigurationChangeEvent)) Disposable {
	return e.retainListener()
}

// OnDidChangeActiveTextEditor retains listener. No events are emitted.
func (e *Emulator) OnDidChangeActiveTextEditor(listener func(editor any)) Disposable {
	return e.retainListener()
}

func (e *Emulator) retainListener() Disposable {
	e.mu.Lock()
	e.listeners++
	e.mu.Unlock()
	d := NewDisposable(func() error {
		e.mu.Lock()
		e.listeners--
		e.mu.Unlock()
		return nil
	})
	e.rc.Subscriptions.Add(d)
	return d
}

// OpenTextDocument resolves uriOrPath to a workspace file.
func (e *Emulator) OpenTextDocument(ctx context.Context, uriOrPath any) (*TextDocument, error) {
	p, err := e.resolveFile(ctx, uriOrPath)
	if err != nil {
		return nil, err
	}
	return &TextDocument{uri: FileURI(p), resources: e.resources}, nil
}

// FS returns the workspace file system namespace.
func (e *Emulator) FS() FileSystem { return e }

// ReadFile returns the content of the file uri resolves to.
func (e *Emulator) ReadFile(ctx context.Context, uri any) ([]byte, error) {
	p, err := e.resolveFile(ctx, uri)
	if err != nil {
		return nil, err
	}
	data, err := e.resources.ReadFile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// WriteFile creates or replaces the file uri resolves to.
func (e *Emulator) WriteFile(ctx context.Context, uri any, data []byte) error {
	p, err := pathOf(uri)
	if err != nil {
		return err
	}
	if e.resources == nil || !e.resources.HasWorkspace() {
		return ErrNoWorkspace
	}
	if err := e.resources.WriteFile(ctx, p, data); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// resolveFile maps ref to a path that names an existing file in the active
// workspace.
func (e *Emulator) resolveFile(ctx context.Context, ref any) (string, error) {
	p, err := pathOf(ref)
	if err != nil {
		return "", err
	}
	if e.resources == nil || !e.resources.HasWorkspace() {
		return "", ErrNoWorkspace
	}
	exists, isDir, err := e.resources.Stat(ctx, p)
	if err != nil {
		if errors.Is(err, workbench.ErrNoWorkspace) {
			return "", ErrNoWorkspace
		}
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	if !exists || isDir {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return p, nil
}

// ShowInformationMessage records message at info level.
func (e *Emulator) ShowInformationMessage(ctx context.Context, message string, items ...string) (string, error) {
	log.Info(log.CatHost, message, "extension", e.pkg.ExtensionID)
	return "", nil
}

// ShowWarningMessage records message at warn level.
func (e *Emulator) ShowWarningMessage(ctx context.Context, message string, items ...string) (string, error) {
	log.Warn(log.CatHost, message, "extension", e.pkg.ExtensionID)
	return "", nil
}

// ShowErrorMessage records message at error level.
func (e *Emulator) ShowErrorMessage(ctx context.Context, message string, items ...string) (string, error) {
	log.Error(log.CatHost, message, "extension", e.pkg.ExtensionID)
	return "", nil
}

// CreateOutputChannel returns a logging output channel.
func (e *Emulator) CreateOutputChannel(name string) *OutputChannel {
	return &OutputChannel{name: name, extensionID: e.pkg.ExtensionID}
}

// GetExtension returns this emulator's own extension for its id only.
func (e *Emulator) GetExtension(id string) (*ExtensionInfo, bool) {
	if id != e.pkg.ExtensionID {
		return nil, false
	}
	info := e.rc.Extension
	return &info, true
}

// RegisterContributions defines the package's contributes.commands in the
// registry, without handlers, so they are listed before activation.
// Commands already defined are left alone. Returns how many were added.
func (e *Emulator) RegisterContributions() int {
	if e.pkg.Manifest == nil {
		return 0
	}
	n := 0
	for _, c := range e.pkg.Manifest.Contributes.Commands() {
		if e.registry.HasCommand(c.Command) {
			continue
		}
		e.registry.RegisterCommand(workbench.Command{
			ID:       c.Command,
			Title:    c.Title,
			Category: c.Category,
			Source:   e.pkg.ExtensionID,
		})
		n++
	}
	return n
}

// Dispose disposes every subscription in order. Individual failures are
// logged and do not stop the rest. The emulator rejects new command
// registrations afterwards.
func (e *Emulator) Dispose() {
	e.mu.Lock()
	e.disposed = true
	e.mu.Unlock()

	for _, err := range e.rc.Subscriptions.DisposeAll() {
		log.WarnErr(log.CatHost, "dispose failed", err, "extension", e.pkg.ExtensionID)
	}

	e.mu.Lock()
	clear(e.handlers)
	e.listeners = 0
	e.mu.Unlock()
}

func argsFrom(params map[string]any) []any {
	switch v := params["args"].(type) {
	case []any:
		return append([]any(nil), v...)
	case nil:
		return nil
	default:
		return []any{v}
	}
}
