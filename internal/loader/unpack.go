package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/manifest"
	"github.com/kispace-io/appspace/internal/registry"
)

// DefaultNamespace is used when neither the registry nor the manifest names a
// publisher.
const DefaultNamespace = "local"

// DefaultVersion is used when neither the registry nor the manifest names a
// version.
const DefaultVersion = "0.0.0"

// manifestPaths are the archive locations searched for package.json, in order.
var manifestPaths = []string{"package.json", "extension/package.json"}

// Unpack turns a zip payload into a Package. ext, when non-nil, supplies the
// identity; otherwise the manifest's publisher, name and version are used.
// Entries that cannot be read are dropped with a warning.
func Unpack(data []byte, ext *registry.Extension) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if errors.Is(err, zip.ErrInsecurePath) {
		// Unsafe names are filtered per entry below.
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	entries := make(map[string]*zip.File, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		name := normalizeEntryName(f.Name)
		if name == "" {
			continue
		}
		if !fs.ValidPath(name) {
			warn("unsafe archive entry %s ignored", f.Name)
			continue
		}
		if _, dup := entries[name]; dup {
			warn("duplicate archive entry %s ignored", name)
			continue
		}
		entries[name] = f
		order = append(order, name)
	}

	var manifestFile *zip.File
	for _, p := range manifestPaths {
		if f, ok := entries[p]; ok {
			manifestFile = f
			break
		}
	}
	if manifestFile == nil {
		return nil, ErrManifestMissing
	}
	rawManifest, err := readEntry(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidArchive, manifestFile.Name, err)
	}
	m, err := manifest.Parse(rawManifest)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, manifest.Lint(rawManifest)...)

	pkg := &Package{
		Manifest:       m,
		Files:          make(map[string]string, len(order)),
		EntryPoint:     m.EntryPoint(),
		IsWebExtension: m.IsWebCompatible(),
		LoadedAt:       time.Now().UTC(),
	}
	namespace, name, version := identity(m, ext)
	if name == "" {
		return nil, fmt.Errorf("%w: package declares no name", ErrManifestParse)
	}
	if namespace == "" {
		warn("no publisher declared, using namespace %q", DefaultNamespace)
		namespace = DefaultNamespace
	}
	if version == "" {
		warn("no version declared, using %s", DefaultVersion)
		version = DefaultVersion
	}
	pkg.Namespace, pkg.Name, pkg.Version = namespace, name, version
	pkg.ExtensionID = pkg.Namespace + "." + pkg.Name

	if !pkg.IsWebExtension {
		warn("%s declares only a main entry point and no web or ui extensionKind; it may not run in a browser host", pkg.ExtensionID)
	}

	for _, name := range order {
		raw, err := readEntry(entries[name])
		if err != nil {
			warn("dropped %s: %v", name, err)
			continue
		}
		text, binary, err := decodeContent(raw)
		if err != nil {
			warn("dropped %s: %v", name, err)
			continue
		}
		pkg.Files[name] = text
		if binary {
			pkg.BinaryFiles = append(pkg.BinaryFiles, name)
		}
	}

	if _, ok := EntryPointContent(pkg); !ok {
		warn("entry point %s not found in archive", pkg.EntryPoint)
	}

	pkg.Warnings = warnings
	for _, w := range warnings {
		log.Debug(log.CatLoader, "unpack warning", "extension", pkg.ExtensionID, "warning", w)
	}
	return pkg, nil
}

// identity prefers registry values over manifest values, field by field.
func identity(m *manifest.PackageManifest, ext *registry.Extension) (namespace, name, version string) {
	namespace, name, version = m.Publisher, m.Name, m.Version
	if ext != nil {
		namespace = firstNonEmpty(ext.Namespace, namespace)
		name = firstNonEmpty(ext.Name, name)
		version = firstNonEmpty(ext.Version, version)
	}
	return namespace, name, version
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeEntryName(name string) string {
	return manifest.StripRelative(strings.ReplaceAll(name, `\`, "/"))
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// decodeContent returns raw as text. Valid UTF-8 is kept as is; anything else
// is decoded byte-for-byte as ISO-8859-1 and reported as binary.
func decodeContent(raw []byte) (text string, binary bool, err error) {
	if utf8.Valid(raw) {
		return string(raw), false, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, fmt.Errorf("decoding bytes: %w", err)
	}
	return string(decoded), true, nil
}
