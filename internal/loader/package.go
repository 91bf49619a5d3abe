package loader

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/kispace-io/appspace/internal/manifest"
)

// CacheKeyPrefix prefixes every persisted package record.
const CacheKeyPrefix = "vsix_extensions/"

// entryPrefixes are the directories an entry point is looked up under, in
// order.
var entryPrefixes = []string{
	"",
	"extension/",
	"out/",
	"extension/out/",
	"browser/",
	"extension/browser/",
}

// Package is a fully unpacked and cataloged extension. It is also the
// persisted cache record.
type Package struct {
	Manifest       *manifest.PackageManifest `json:"manifest"`
	ExtensionID    string                    `json:"extensionId"`
	Namespace      string                    `json:"namespace"`
	Name           string                    `json:"name"`
	Version        string                    `json:"version"`
	Files          map[string]string         `json:"files"`
	BinaryFiles    []string                  `json:"binaryFiles,omitempty"` // decoded byte-for-byte as ISO-8859-1
	EntryPoint     string                    `json:"entryPoint"`
	IsWebExtension bool                      `json:"isWebExtension"`
	Warnings       []string                  `json:"warnings,omitempty"`
	LoadedAt       time.Time                 `json:"loadedAt"`
}

// CacheKey returns the persistent store key of an extension version.
func CacheKey(extensionID, version string) string {
	return CacheKeyPrefix + extensionID + "/" + version
}

// Paths returns the cataloged file paths in lexical order.
func (p *Package) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for k := range p.Files {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// IsBinary reports whether path was stored through the byte fallback.
func (p *Package) IsBinary(path string) bool {
	return slices.Contains(p.BinaryFiles, path)
}

// FileBytes returns the original bytes of path, reversing the byte fallback
// for binary entries.
func (p *Package) FileBytes(path string) ([]byte, error) {
	path = manifest.StripRelative(path)
	content, ok := p.Files[path]
	if !ok {
		return nil, fmt.Errorf("file %s not in package %s", path, p.ExtensionID)
	}
	if !p.IsBinary(path) {
		return []byte(content), nil
	}
	data, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("re-encoding %s: %w", path, err)
	}
	return data, nil
}

// File returns the cataloged content of relPath.
func File(pkg *Package, relPath string) (string, bool) {
	if pkg == nil {
		return "", false
	}
	content, ok := pkg.Files[manifest.StripRelative(relPath)]
	return content, ok
}

// EntryPointContent returns the content of pkg's entry point. Exact paths
// under the conventional prefixes are tried first, then any cataloged path
// ending in the entry point, then any path containing it.
func EntryPointContent(pkg *Package) (string, bool) {
	if pkg == nil || pkg.EntryPoint == "" {
		return "", false
	}
	ep := pkg.EntryPoint

	for _, prefix := range entryPrefixes {
		if content, ok := pkg.Files[prefix+ep]; ok {
			return content, true
		}
	}

	paths := pkg.Paths()
	for _, p := range paths {
		if strings.HasSuffix(p, ep) {
			return pkg.Files[p], true
		}
	}
	for _, p := range paths {
		if strings.Contains(p, ep) {
			return pkg.Files[p], true
		}
	}
	return "", false
}

// IsUniversalPackage reports whether m targets both browser and workspace
// hosts.
func IsUniversalPackage(m *manifest.PackageManifest) bool {
	return m != nil && m.IsUniversal()
}
