package workbench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

var (
	// ErrNotFound is returned when a workspace path does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("resource is a directory")
	// ErrNoWorkspace is returned by Resources when no workspace is open.
	ErrNoWorkspace = errors.New("no workspace open")
)

// Workspace is a directory tree addressed by an afs URL, e.g.
// "file:///home/me/project" or "mem://localhost/ws".
type Workspace struct {
	fs      afs.Service
	rootURL string
}

// NewWorkspace returns a workspace rooted at rootURL.
func NewWorkspace(rootURL string, service afs.Service) *Workspace {
	return &Workspace{fs: service, rootURL: strings.TrimRight(rootURL, "/")}
}

// Root returns the root URL.
func (w *Workspace) Root() string { return w.rootURL }

// URL maps a workspace-relative path to its afs URL. Leading "/" and "./"
// are ignored; paths escaping the root are rejected.
func (w *Workspace) URL(path string) (string, error) {
	p := strings.TrimLeft(strings.ReplaceAll(path, `\`, "/"), "/")
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return w.rootURL, nil
	}
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("invalid workspace path %q", path)
	}
	return url.Join(w.rootURL, p), nil
}

// Stat reports whether path exists and whether it is a directory.
func (w *Workspace) Stat(ctx context.Context, path string) (exists, isDir bool, err error) {
	u, err := w.URL(path)
	if err != nil {
		return false, false, err
	}
	exists, err = w.fs.Exists(ctx, u)
	if err != nil || !exists {
		return false, false, err
	}
	obj, err := w.fs.Object(ctx, u)
	if err != nil {
		return false, false, fmt.Errorf("inspecting %s: %w", u, err)
	}
	return true, obj.IsDir(), nil
}

// ReadFile returns the content of path.
func (w *Workspace) ReadFile(ctx context.Context, path string) ([]byte, error) {
	exists, isDir, err := w.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if isDir {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	u, _ := w.URL(path)
	data, err := w.fs.DownloadWithURL(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return data, nil
}

// WriteFile creates or replaces path with data.
func (w *Workspace) WriteFile(ctx context.Context, path string, data []byte) error {
	u, err := w.URL(path)
	if err != nil {
		return err
	}
	if err := w.fs.Upload(ctx, u, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", u, err)
	}
	return nil
}

// Resources tracks the active workspace, if any. Safe for concurrent use.
type Resources struct {
	mu     sync.RWMutex
	active *Workspace
}

// NewResources returns Resources with ws active; ws may be nil.
func NewResources(ws *Workspace) *Resources {
	return &Resources{active: ws}
}

// Open makes the workspace at rootURL active.
func (r *Resources) Open(rootURL string, service afs.Service) *Workspace {
	ws := NewWorkspace(rootURL, service)
	r.mu.Lock()
	r.active = ws
	r.mu.Unlock()
	return ws
}

// CloseWorkspace clears the active workspace.
func (r *Resources) CloseWorkspace() {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
}

// Active returns the active workspace.
func (r *Resources) Active() (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.active != nil
}

// HasWorkspace reports whether a workspace is open.
func (r *Resources) HasWorkspace() bool {
	_, ok := r.Active()
	return ok
}

// Stat delegates to the active workspace.
func (r *Resources) Stat(ctx context.Context, path string) (exists, isDir bool, err error) {
	ws, ok := r.Active()
	if !ok {
		return false, false, ErrNoWorkspace
	}
	return ws.Stat(ctx, path)
}

// ReadFile delegates to the active workspace.
func (r *Resources) ReadFile(ctx context.Context, path string) ([]byte, error) {
	ws, ok := r.Active()
	if !ok {
		return nil, ErrNoWorkspace
	}
	return ws.ReadFile(ctx, path)
}

// WriteFile delegates to the active workspace.
func (r *Resources) WriteFile(ctx context.Context, path string, data []byte) error {
	ws, ok := r.Active()
	if !ok {
		return ErrNoWorkspace
	}
	return ws.WriteFile(ctx, path, data)
}
