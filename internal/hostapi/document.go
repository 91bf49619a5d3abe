package hostapi

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/kispace-io/appspace/internal/log"
)

var languageIDs = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".json": "json",
	".md":   "markdown",
	".yaml": "yaml",
	".yml":  "yaml",
	".html": "html",
	".css":  "css",
	".go":   "go",
	".py":   "python",
}

// TextDocument is a handle on a workspace file. Content is read on demand.
type TextDocument struct {
	uri       URI
	resources ResourceProvider
}

// URI returns the document URI.
func (d *TextDocument) URI() URI { return d.uri }

// FileName returns the document path.
func (d *TextDocument) FileName() string { return d.uri.Path }

// LanguageID guesses the language from the file extension.
func (d *TextDocument) LanguageID() string {
	if id, ok := languageIDs[strings.ToLower(path.Ext(d.uri.Path))]; ok {
		return id
	}
	return "plaintext"
}

// GetText reads the current file content.
func (d *TextDocument) GetText(ctx context.Context) (string, error) {
	data, err := d.resources.ReadFile(ctx, d.uri.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutputChannel records appended text at debug level. Show, Hide and Clear
// have no visible effect.
type OutputChannel struct {
	name        string
	extensionID string

	mu    sync.Mutex
	lines int
}

// Name returns the channel name.
func (c *OutputChannel) Name() string { return c.name }

// Append records value.
func (c *OutputChannel) Append(value string) {
	c.mu.Lock()
	c.lines++
	c.mu.Unlock()
	log.Debug(log.CatHost, "output", "extension", c.extensionID, "channel", c.name, "text", value)
}

// AppendLine records value as one line.
func (c *OutputChannel) AppendLine(value string) { c.Append(value) }

// Lines returns the number of Append calls seen.
func (c *OutputChannel) Lines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines
}

func (c *OutputChannel) Clear()         {}
func (c *OutputChannel) Show()          {}
func (c *OutputChannel) Hide()          {}
func (c *OutputChannel) Dispose() error { return nil }
