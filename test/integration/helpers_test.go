//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kispace-io/appspace/internal/log"
)

// testEnv holds isolated directories and the fake upstream services.
type testEnv struct {
	HomeDir    string // APPSPACE_HOME: config and cache
	ProjectDir string // a mock project directory
	Upstream   *upstream
}

// setupTestEnv creates isolated temp directories, points APPSPACE_HOME at
// one of them and starts the fake upstream. Everything is restored after
// the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log.Discard()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
		Upstream:   newUpstream(t),
	}
	t.Setenv("APPSPACE_HOME", env.HomeDir)
	return env
}

// upstream fakes the registry (/api), the GitHub contents API (/repos) and
// the CDN transform endpoint (/gh) on one server.
type upstream struct {
	*httptest.Server
	downloads atomic.Int32
	artifacts map[string][]byte // download path -> vsix
	repos     map[string]string // "owner/repo" -> package.json, "" for none
	cdnFiles  map[string]bool   // "owner/repo@ref/path" served by the CDN
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{
		artifacts: map[string][]byte{
			"/api/acme/hello/1.0.0/file/acme.hello-1.0.0.vsix": buildVSIX(t, "1.0.0"),
			"/api/acme/hello/2.0.0/file/acme.hello-2.0.0.vsix": buildVSIX(t, "2.0.0"),
		},
		repos: map[string]string{
			"octo/tool":  `{"name":"tool","main":"./dist/extension.js"}`,
			"octo/plain": "",
		},
		cdnFiles: map[string]bool{
			"octo/plain@main/src/extension.ts": true,
		},
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) APIBase() string { return u.URL + "/api" }

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	switch {
	case p == "/api/-/search":
		json.NewEncoder(w).Encode(map[string]any{
			"offset":    0,
			"totalSize": 1,
			"extensions": []map[string]any{
				{"namespace": "acme", "name": "hello", "version": "2.0.0", "description": "Says hello"},
			},
		})
	case p == "/api/acme/hello" || p == "/api/acme/hello/2.0.0":
		json.NewEncoder(w).Encode(map[string]any{
			"namespace": "acme", "name": "hello", "version": "2.0.0",
			"allVersions": map[string]string{"2.0.0": "", "1.0.0": ""},
		})
	case u.artifacts[p] != nil:
		u.downloads.Add(1)
		w.Write(u.artifacts[p])
	case strings.HasPrefix(p, "/repos/") && strings.HasSuffix(p, "/contents/package.json"):
		repo := strings.TrimSuffix(strings.TrimPrefix(p, "/repos/"), "/contents/package.json")
		pkg, ok := u.repos[repo]
		if !ok || pkg == "" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(pkg)),
		})
	case strings.HasPrefix(p, "/gh/") && u.cdnFiles[strings.TrimPrefix(p, "/gh/")]:
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func buildVSIX(t *testing.T, version string) []byte {
	t.Helper()
	files := map[string]string{
		"extension/package.json": `{
  "name": "hello",
  "publisher": "acme",
  "version": "` + version + `",
  "browser": "./dist/web/extension.js",
  "extensionKind": ["ui", "workspace"],
  "contributes": {
    "commands": [
      {"command": "hello.greet", "title": "Greet", "category": "Hello"},
      {"command": "hello.save", "title": "Save Greeting"}
    ]
  }
}`,
		"extension/dist/web/extension.js": "export function activate(ctx) {}\n",
		"extension/media/icon.png":        "\x89PNG\r\n\x1a\n\xff\xfe",
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}
