package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/kispace-io/appspace/internal/registry"
)

func testVSIX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"extension/package.json": `{"name":"hello","publisher":"acme","version":"1.0.0","browser":"./web.js",` +
			`"contributes":{"commands":[{"command":"hello.say","title":"Say Hello","category":"Hello"}]}}`,
		"extension/web.js": "export function activate() {}\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func fakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	artifact := testVSIX(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/-/search":
			json.NewEncoder(w).Encode(map[string]any{
				"offset":    0,
				"totalSize": 1,
				"extensions": []registry.Extension{
					{Namespace: "acme", Name: "hello", Version: "1.0.0", Description: "Says hello", Verified: true},
				},
			})
		case "/api/acme/hello":
			json.NewEncoder(w).Encode(registry.Extension{
				Namespace: "acme", Name: "hello", Version: "1.2.0",
				AllVersions: map[string]string{"1.2.0": "", "1.0.0": ""},
			})
		case "/api/acme/hello/1.0.0/file/acme.hello-1.0.0.vsix":
			w.Write(artifact)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the command tree with args and returns stdout. Flags are
// global, so every invocation passes the ones it relies on.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	if env != nil {
		env.Close(context.Background())
		env = nil
	}
	return out.String(), err
}

func setupCLI(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("APPSPACE_HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	srv := fakeRegistry(t)
	return home, srv.URL + "/api"
}

func TestCLI_SearchAndShow(t *testing.T) {
	_, api := setupCLI(t)

	out, err := run(t, "search", "hello", "--registry", api, "--no-cache", "--log-level", "error")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "acme.hello") || !strings.Contains(out, "Says hello") {
		t.Errorf("search output:\n%s", out)
	}

	out, err = run(t, "show", "acme.hello", "--registry", api, "--no-cache")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "v1.2.0") || !strings.Contains(out, "Versions:  1.2.0, 1.0.0") {
		t.Errorf("show output:\n%s", out)
	}
}

func TestCLI_InstallCachesPackage(t *testing.T) {
	home, api := setupCLI(t)
	cache := "sqlite://" + filepath.Join(home, "cache.db")

	out, err := run(t, "install", "acme.hello@1.0.0", "--activate", "--registry", api, "--cache", cache, "--no-cache=false")
	if err != nil {
		t.Fatalf("install error = %v", err)
	}
	for _, want := range []string{"Installed acme.hello v1.0.0", "Entry point: web.js", "hello.say  Hello: Say Hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("install output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(home, "cache.db")); err != nil {
		t.Errorf("cache database not created: %v", err)
	}

	out, err = run(t, "cat", "acme.hello@1.0.0", "--entry", "--registry", api, "--cache", cache, "--no-cache=false")
	if err != nil {
		t.Fatalf("cat error = %v", err)
	}
	if out != "export function activate() {}\n" {
		t.Errorf("cat --entry output = %q", out)
	}
	catEntry = false
}

func TestCLI_ProjectWorkflow(t *testing.T) {
	_, api := setupCLI(t)
	project := t.TempDir()
	common := []string{"--registry", api, "--no-cache", "--project", project}

	if _, err := run(t, append([]string{"ext", "add", "acme.hello@1.0.0"}, common...)...); err != nil {
		t.Fatalf("ext add error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(project, "appspace.yaml")); err != nil {
		t.Fatalf("project file not written: %v", err)
	}

	out, err := run(t, append([]string{"ext", "sync"}, common...)...)
	if err != nil {
		t.Fatalf("ext sync error = %v", err)
	}
	if !strings.Contains(out, "acme.hello v1.0.0") || !strings.Contains(out, "1 command(s) registered") {
		t.Errorf("sync output:\n%s", out)
	}

	out, err = run(t, append([]string{"outdated"}, common...)...)
	if err != nil {
		t.Fatalf("outdated error = %v", err)
	}
	if !strings.Contains(out, "acme.hello") || !strings.Contains(out, "1.2.0") {
		t.Errorf("outdated output:\n%s", out)
	}

	if _, err := run(t, append([]string{"ext", "remove", "acme.hello"}, common...)...); err != nil {
		t.Fatalf("ext remove error = %v", err)
	}
	out, err = run(t, append([]string{"ext", "list"}, common...)...)
	if err != nil {
		t.Fatalf("ext list error = %v", err)
	}
	if !strings.Contains(out, "No extensions declared") {
		t.Errorf("list output after remove:\n%s", out)
	}
}

func TestCLI_Errors(t *testing.T) {
	_, api := setupCLI(t)

	if _, err := run(t, "show", "acme.gone", "--registry", api, "--no-cache"); !registry.IsNotFound(err) {
		t.Errorf("show of a missing extension error = %v, want not found", err)
	}
	if _, err := run(t, "install", "not-an-id", "--registry", api, "--no-cache"); err == nil {
		t.Error("install with a malformed id should fail")
	}
}

func TestCLI_Config(t *testing.T) {
	home, _ := setupCLI(t)

	out, err := run(t, "config", "set", "log_level", "debug")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if out != "Set log_level = debug\n" {
		t.Errorf("config set output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	out, err = run(t, "config", "get", "log_level")
	if err != nil {
		t.Fatalf("config get error = %v", err)
	}
	if out != "debug\n" {
		t.Errorf("config get output = %q", out)
	}
}
