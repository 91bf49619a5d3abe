// Package log provides category-tagged structured logging on top of log/slog.
// Every record carries a "cat" attribute so output from the loader, the
// registry client and the host API emulator can be filtered independently.
// Logging goes to stderr at warn level until Init is called.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Category groups related log messages.
type Category string

const (
	CatLoader    Category = "loader"    // package download, unpack, catalog
	CatRegistry  Category = "registry"  // Open VSX requests
	CatResolver  Category = "resolver"  // GitHub entry-point discovery
	CatCache     Category = "cache"     // persistent and in-memory caches
	CatHost      Category = "hostapi"   // emulated extension-host API
	CatWorkbench Category = "workbench" // command registry and workspace resources
	CatConfig    Category = "config"    // configuration loading
	CatCLI       Category = "cli"       // command line front end
)

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init redirects logging to w at the given level ("debug", "info", "warn", "error").
func Init(w io.Writer, lvl string) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
	level.Set(ParseLevel(lvl))
}

// SetLevel changes the minimum level without touching the destination.
func SetLevel(lvl string) {
	level.Set(ParseLevel(lvl))
}

// Discard silences all logging. Used by tests.
func Discard() {
	Init(io.Discard, "error")
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to warn.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func emit(lvl slog.Level, cat Category, msg string, kv []any) {
	current().Log(context.Background(), lvl, msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, kv ...any) { emit(slog.LevelDebug, cat, msg, kv) }

// Info logs at info level.
func Info(cat Category, msg string, kv ...any) { emit(slog.LevelInfo, cat, msg, kv) }

// Warn logs at warn level.
func Warn(cat Category, msg string, kv ...any) { emit(slog.LevelWarn, cat, msg, kv) }

// Error logs at error level.
func Error(cat Category, msg string, kv ...any) { emit(slog.LevelError, cat, msg, kv) }

// ErrorErr logs err under the "error" key at error level.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	emit(slog.LevelError, cat, msg, append([]any{"error", err}, kv...))
}

// WarnErr logs err under the "error" key at warn level.
func WarnErr(cat Category, msg string, err error, kv ...any) {
	emit(slog.LevelWarn, cat, msg, append([]any{"error", err}, kv...))
}
