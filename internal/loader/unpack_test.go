package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kispace-io/appspace/internal/manifest"
	"github.com/kispace-io/appspace/internal/registry"
)

const helloManifest = `{
	"name": "hello",
	"publisher": "acme",
	"version": "1.0.0",
	"browser": "./dist/web.js",
	"main": "./out/node.js"
}`

func TestUnpack_RootManifest(t *testing.T) {
	data := buildZip(t,
		entry("package.json", helloManifest),
		entry("dist/web.js", "export function activate() {}"),
		entry("README.md", "# hello"),
	)

	pkg, err := Unpack(data, nil)
	require.NoError(t, err)

	assert.Equal(t, "acme.hello", pkg.ExtensionID)
	assert.Equal(t, "acme", pkg.Namespace)
	assert.Equal(t, "hello", pkg.Name)
	assert.Equal(t, "1.0.0", pkg.Version)
	assert.Equal(t, "dist/web.js", pkg.EntryPoint)
	assert.True(t, pkg.IsWebExtension)
	assert.Equal(t, []string{"README.md", "dist/web.js", "package.json"}, pkg.Paths())
	assert.Empty(t, pkg.BinaryFiles)
	assert.False(t, pkg.LoadedAt.IsZero())
}

func TestUnpack_NamespacedManifest(t *testing.T) {
	data := buildZip(t,
		entry("extension.vsixmanifest", "<xml/>"),
		entry("extension/package.json", `{"name": "ns-ext", "publisher": "acme", "version": "2.0.0", "main": "./out/extension.js", "extensionKind": ["ui"]}`),
		entry("extension/out/extension.js", "module.exports = {}"),
	)

	pkg, err := Unpack(data, nil)
	require.NoError(t, err)

	assert.Equal(t, "out/extension.js", pkg.EntryPoint)
	content, ok := EntryPointContent(pkg)
	require.True(t, ok)
	assert.Equal(t, "module.exports = {}", content)
	assert.True(t, pkg.IsWebExtension, "ui kind marks a main-only package as web")
}

func TestUnpack_RegistryIdentityWins(t *testing.T) {
	data := buildZip(t, entry("package.json", helloManifest))
	ext := &registry.Extension{Namespace: "open", Name: "hello-web", Version: "1.0.1"}

	pkg, err := Unpack(data, ext)
	require.NoError(t, err)
	assert.Equal(t, "open.hello-web", pkg.ExtensionID)
	assert.Equal(t, "1.0.1", pkg.Version)
}

func TestUnpack_Defaults(t *testing.T) {
	data := buildZip(t, entry("package.json", `{"name": "bare"}`), entry("extension.js", "x"))

	pkg, err := Unpack(data, nil)
	require.NoError(t, err)
	assert.Equal(t, "local.bare", pkg.ExtensionID)
	assert.Equal(t, DefaultVersion, pkg.Version)
	assert.Equal(t, manifest.DefaultEntryPoint, pkg.EntryPoint)
	assert.True(t, pkg.IsWebExtension, "no entry fields means web compatible")
	assert.NotEmpty(t, pkg.Warnings)
}

func TestUnpack_MainOnlyIsNotWeb(t *testing.T) {
	data := buildZip(t,
		entry("package.json", `{"name": "node-only", "publisher": "acme", "version": "1.0.0", "main": "./out/ext.js"}`),
		entry("out/ext.js", "require('fs')"),
	)

	pkg, err := Unpack(data, nil)
	require.NoError(t, err, "non-web packages still load")
	assert.False(t, pkg.IsWebExtension)
	assert.Contains(t, joined(pkg.Warnings), "only a main entry point")
}

func TestUnpack_BinaryFallback(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0xff, 0x00, 0xfe}
	data := buildZip(t,
		entry("package.json", helloManifest),
		zipEntry{name: "media/icon.png", body: raw},
	)

	pkg, err := Unpack(data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"media/icon.png"}, pkg.BinaryFiles)
	assert.True(t, pkg.IsBinary("media/icon.png"))
	got, err := pkg.FileBytes("./media/icon.png")
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	text, err := pkg.FileBytes("package.json")
	require.NoError(t, err)
	assert.Equal(t, helloManifest, string(text))
}

func TestUnpack_DuplicateEntryFirstWins(t *testing.T) {
	data := buildZip(t,
		entry("package.json", helloManifest),
		entry("dist/web.js", "first"),
		entry("./dist/web.js", "second"),
	)

	pkg, err := Unpack(data, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", pkg.Files["dist/web.js"])
	assert.Contains(t, joined(pkg.Warnings), "duplicate archive entry dist/web.js")
}

func TestUnpack_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := Unpack([]byte("definitely not a zip"), nil)
		require.ErrorIs(t, err, ErrInvalidArchive)
	})
	t.Run("no manifest", func(t *testing.T) {
		_, err := Unpack(buildZip(t, entry("nested/deeper/package.json", "{}")), nil)
		require.ErrorIs(t, err, ErrManifestMissing)
	})
	t.Run("malformed manifest", func(t *testing.T) {
		_, err := Unpack(buildZip(t, entry("package.json", "{nope")), nil)
		require.ErrorIs(t, err, ErrManifestParse)
	})
	t.Run("nameless manifest", func(t *testing.T) {
		_, err := Unpack(buildZip(t, entry("package.json", `{"version": "1.0.0"}`)), nil)
		require.ErrorIs(t, err, ErrManifestParse)
	})
}

func TestUnpack_LintWarnings(t *testing.T) {
	data := buildZip(t, entry("package.json", `{"name": "Bad Name", "publisher": "acme", "version": "1.0.0"}`), entry("extension.js", ""))

	pkg, err := Unpack(data, nil)
	require.NoError(t, err, "schema issues are never fatal")
	assert.Contains(t, joined(pkg.Warnings), "/name")
}

func TestEntryPointContent(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		files map[string]string
		want  string
		found bool
	}{
		{"root", "ext.js", map[string]string{"ext.js": "root", "out/ext.js": "out"}, "root", true},
		{"out prefix", "ext.js", map[string]string{"out/ext.js": "out", "extension/out/ext.js": "nested"}, "out", true},
		{"browser prefix", "web.js", map[string]string{"extension/browser/web.js": "eb"}, "eb", true},
		{"suffix fallback", "web.js", map[string]string{"lib/z.js": "z", "dist/esm/web.js": "esm"}, "esm", true},
		{"substring fallback", "web", map[string]string{"a/web.bundle.js": "bundle"}, "bundle", true},
		{"missing", "gone.js", map[string]string{"other.js": "x"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EntryPointContent(&Package{EntryPoint: tt.entry, Files: tt.files})
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := EntryPointContent(nil)
	assert.False(t, ok)
}

func TestFile(t *testing.T) {
	pkg := &Package{Files: map[string]string{"a/b.txt": "hi"}}
	got, ok := File(pkg, "./a/b.txt")
	assert.True(t, ok)
	assert.Equal(t, "hi", got)

	_, ok = File(pkg, "missing")
	assert.False(t, ok)
}

func TestIsUniversalPackage(t *testing.T) {
	assert.True(t, IsUniversalPackage(&manifest.PackageManifest{Main: "a", Browser: "b"}))
	assert.True(t, IsUniversalPackage(&manifest.PackageManifest{ExtensionKind: []string{"ui", "workspace"}}))
	assert.False(t, IsUniversalPackage(&manifest.PackageManifest{Browser: "b"}))
	assert.False(t, IsUniversalPackage(nil))
}

func joined(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
