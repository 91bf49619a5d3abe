package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/store"
)

type zipEntry struct {
	name string
	body []byte
}

// buildZip writes entries in order; duplicate names are kept.
func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func entry(name, body string) zipEntry {
	return zipEntry{name: name, body: []byte(body)}
}

// artifactServer serves payload at every path and records requests.
type artifactServer struct {
	*httptest.Server
	hits atomic.Int32

	mu      sync.Mutex
	payload []byte
	status  int
	paths   []string
}

func newArtifactServer(t *testing.T, payload []byte) *artifactServer {
	t.Helper()
	log.Discard()
	a := &artifactServer{payload: payload, status: http.StatusOK}
	a.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		a.mu.Lock()
		a.paths = append(a.paths, r.URL.Path)
		status, payload := a.status, a.payload
		a.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(a.Close)
	return a
}

func (a *artifactServer) serve(status int, payload []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status, a.payload = status, payload
}

func (a *artifactServer) requested() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}

// memStore is a map-backed store.Store.
type memStore struct {
	data    map[string][]byte
	putErr  error
	getErr  error
	puts    int
	deletes int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

var errDiskFull = errors.New("disk full")
