package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kispace-io/appspace/internal/log"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	log.Discard()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(WithHTTPClient(srv.Client()), WithBaseURL(srv.URL+"/api/")), srv
}

func TestSearch(t *testing.T) {
	var gotQuery map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/-/search", r.URL.Path)
		gotQuery = map[string]string{
			"query":  r.URL.Query().Get("query"),
			"size":   r.URL.Query().Get("size"),
			"offset": r.URL.Query().Get("offset"),
		}
		_, _ = w.Write([]byte(`{"offset": 20, "totalSize": 42, "extensions": [
			{"namespace": "redhat", "name": "vscode-yaml", "version": "1.15.0", "displayName": "YAML"}
		]}`))
	})

	res, err := c.Search(context.Background(), "yaml lint", 10, 20)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"query": "yaml lint", "size": "10", "offset": "20"}, gotQuery)
	assert.Equal(t, 20, res.Offset)
	assert.Equal(t, 42, res.TotalSize)
	require.Len(t, res.Extensions, 1)
	assert.Equal(t, "redhat.vscode-yaml", ExtensionID(res.Extensions[0]))
	assert.Equal(t, "YAML", res.Extensions[0].Label())
}

func TestSearch_MissingFieldsDefault(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := c.Search(context.Background(), "x", 5, 15)
	require.NoError(t, err)
	assert.NotNil(t, res.Extensions)
	assert.Empty(t, res.Extensions)
	assert.Equal(t, 15, res.Offset)
	assert.Equal(t, 0, res.TotalSize)
}

func TestSearch_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "x", 5, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistry))

	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "search", re.Op)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
}

func TestSearch_TransportError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.Search(context.Background(), "x", 5, 0)
	require.ErrorIs(t, err, ErrRegistry)
}

func TestGetExtension(t *testing.T) {
	var paths []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(Extension{Namespace: "ms-python", Name: "python", Version: "2024.1.0"})
	})

	ext, err := c.GetExtension(context.Background(), "ms-python", "python", "")
	require.NoError(t, err)
	assert.Equal(t, "2024.1.0", ext.Version)

	_, err = c.GetExtension(context.Background(), "ms-python", "python", "2023.9.0")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/ms-python/python", "/api/ms-python/python/2023.9.0"}, paths)
}

func TestGetExtension_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetExtension(context.Background(), "nope", "missing", "")
	require.ErrorIs(t, err, ErrRegistry)
	assert.True(t, IsNotFound(err))
}

func TestVersions_NewestFirst(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"namespace": "a", "name": "b", "version": "1.10.0", "allVersions": {
			"latest": "u", "1.2.0": "u", "1.10.0": "u", "1.9.3": "u", "0.1.0": "u"
		}}`))
	})

	got, err := c.Versions(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.10.0", "1.9.3", "1.2.0", "0.1.0"}, got)
}

func TestDownloadURL(t *testing.T) {
	c := New(WithBaseURL("https://registry.example/api"))

	tests := []struct {
		name   string
		ext    *Extension
		want   string
		wantOK bool
	}{
		{
			name:   "advertised download wins",
			ext:    &Extension{Namespace: "ns", Name: "n", Version: "1.0.0", Files: map[string]string{"download": "X"}},
			want:   "X",
			wantOK: true,
		},
		{
			name:   "synthesized from identity",
			ext:    &Extension{Namespace: "ns", Name: "n", Version: "1.0.0"},
			want:   "https://registry.example/api/ns/n/1.0.0/file/ns.n-1.0.0.vsix",
			wantOK: true,
		},
		{
			name: "missing version",
			ext:  &Extension{Namespace: "ns", Name: "n"},
		},
		{
			name: "nil extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.DownloadURL(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitID(t *testing.T) {
	ns, n, err := SplitID("redhat.vscode-yaml")
	require.NoError(t, err)
	assert.Equal(t, "redhat", ns)
	assert.Equal(t, "vscode-yaml", n)

	_, _, err = SplitID("noDot")
	assert.Error(t, err)
}
