package hostapi

import (
	"context"

	"github.com/kispace-io/appspace/internal/workbench"
)

// CommandRegistry is the workbench command registry the emulator binds to.
// *workbench.CommandRegistry implements it.
type CommandRegistry interface {
	HasCommand(id string) bool
	RegisterCommand(cmd workbench.Command)
	RegisterHandler(id string, h workbench.Handler) (unregister func())
	ExecuteCommand(ctx context.Context, id string, params map[string]any) (any, error)
}

// ResourceProvider is the workbench file-resource collaborator.
// *workbench.Resources implements it.
type ResourceProvider interface {
	HasWorkspace() bool
	Stat(ctx context.Context, path string) (exists, isDir bool, err error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}

// Commands is the emulated commands namespace.
type Commands interface {
	RegisterCommand(id string, callback any, thisArg any) (Disposable, error)
	ExecuteCommand(ctx context.Context, id string, args ...any) (any, error)
	GetCommands() []string
}

// Workspace is the emulated workspace namespace.
type Workspace interface {
	GetConfiguration(section string) *Configuration
	OnDidChangeConfiguration(listener func(ConfigurationChangeEvent)) Disposable
	OpenTextDocument(ctx context.Context, uriOrPath any) (*TextDocument, error)
	FS() FileSystem
}

// FileSystem is the emulated workspace.fs namespace.
type FileSystem interface {
	ReadFile(ctx context.Context, uri any) ([]byte, error)
	WriteFile(ctx context.Context, uri any, data []byte) error
}

// Window is the emulated window namespace. User interaction is not
// emulated: message calls resolve with no selected item.
type Window interface {
	ShowInformationMessage(ctx context.Context, message string, items ...string) (string, error)
	ShowWarningMessage(ctx context.Context, message string, items ...string) (string, error)
	ShowErrorMessage(ctx context.Context, message string, items ...string) (string, error)
	CreateOutputChannel(name string) *OutputChannel
	OnDidChangeActiveTextEditor(listener func(editor any)) Disposable
}

// Extensions is the emulated extensions namespace.
type Extensions interface {
	GetExtension(id string) (*ExtensionInfo, bool)
}

// API is the host object injected into an extension.
type API struct {
	Commands   Commands
	Workspace  Workspace
	FS         FileSystem
	Window     Window
	Extensions Extensions
}

// ConfigurationChangeEvent is delivered to configuration listeners.
type ConfigurationChangeEvent struct {
	Sections []string
}

// AffectsConfiguration reports whether section changed.
func (e ConfigurationChangeEvent) AffectsConfiguration(section string) bool {
	for _, s := range e.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Configuration is a read-only configuration view with no backing values.
type Configuration struct {
	section string
}

// Section returns the section this view was created for.
func (c *Configuration) Section() string { return c.section }

// Get always returns def.
func (c *Configuration) Get(key string, def any) any { return def }

// Has always reports false.
func (c *Configuration) Has(key string) bool { return false }

// Inspect always returns nil.
func (c *Configuration) Inspect(key string) map[string]any { return nil }

// Update is a no-op.
func (c *Configuration) Update(ctx context.Context, key string, value any) error { return nil }
