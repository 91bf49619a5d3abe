package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/kispace-io/appspace/internal/branding"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a byte-oriented key-value store. Keys are slash-separated paths
// such as "vsix_extensions/redhat.vscode-yaml/1.15.0".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultURL returns the default cache location: a SQLite file under the
// user's home directory.
func DefaultURL() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return "sqlite://" + filepath.Join(home, branding.HomeDir(), "cache.db"), nil
}

// Open returns the store addressed by rawURL:
//
//	sqlite:///abs/path/cache.db  SQLite database file
//	file:///abs/dir              directory tree via afs
//	mem://localhost/dir          in-memory afs tree (tests)
//
// Any other afs-supported scheme is handed to afs as well.
func Open(ctx context.Context, rawURL string) (Store, error) {
	if rawURL == "" {
		def, err := DefaultURL()
		if err != nil {
			return nil, err
		}
		rawURL = def
	}
	if path, ok := strings.CutPrefix(rawURL, "sqlite://"); ok {
		return OpenSQLite(ctx, path)
	}
	if !strings.Contains(rawURL, "://") {
		return nil, fmt.Errorf("unsupported cache URL %q: missing scheme", rawURL)
	}
	return NewAFSStore(rawURL, afs.New()), nil
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}
