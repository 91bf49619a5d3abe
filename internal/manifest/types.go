package manifest

import (
	"encoding/json"
	"strings"
)

// DefaultEntryPoint is used when a manifest declares neither browser nor main.
const DefaultEntryPoint = "extension.js"

// Environment tags accepted in extensionKind.
const (
	KindUI        = "ui"
	KindWeb       = "web"
	KindWorkspace = "workspace"
)

// PackageManifest is a parsed package.json. Fields that were absent are left
// at their zero value. Extra holds every top-level field not modelled here,
// plus recognised fields whose JSON shape could not be decoded.
type PackageManifest struct {
	Name             string
	DisplayName      string
	Publisher        string
	Version          string
	Description      string
	Main             string
	Browser          string
	ActivationEvents []string
	Contributes      Contributes
	ExtensionKind    []string
	Engines          map[string]string
	Extra            map[string]json.RawMessage
}

// Contributes is the raw contributes object keyed by contribution point.
type Contributes map[string]json.RawMessage

// CommandContribution is one entry of contributes.commands.
type CommandContribution struct {
	Command  string `json:"command"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// Commands decodes contributes.commands. Malformed entries are skipped.
func (c Contributes) Commands() []CommandContribution {
	raw, ok := c["commands"]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// A single object is tolerated as well.
		items = []json.RawMessage{raw}
	}
	var out []CommandContribution
	for _, item := range items {
		var cmd CommandContribution
		if err := json.Unmarshal(item, &cmd); err != nil || cmd.Command == "" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// Points returns the contribution point names, unsorted.
func (c Contributes) Points() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

// EntryPoint returns the entry file: browser, then main, then
// DefaultEntryPoint, without a leading "./".
func (m *PackageManifest) EntryPoint() string {
	switch {
	case m.Browser != "":
		return StripRelative(m.Browser)
	case m.Main != "":
		return StripRelative(m.Main)
	default:
		return DefaultEntryPoint
	}
}

// HasKind reports whether extensionKind lists kind.
func (m *PackageManifest) HasKind(kind string) bool {
	for _, k := range m.ExtensionKind {
		if strings.EqualFold(k, kind) {
			return true
		}
	}
	return false
}

// IsWebCompatible reports whether the package can run in a browser host: it
// declares a browser entry, is tagged web or ui, or declares no entry at all.
func (m *PackageManifest) IsWebCompatible() bool {
	if m.Browser != "" {
		return true
	}
	if m.HasKind(KindWeb) || m.HasKind(KindUI) {
		return true
	}
	return m.Main == ""
}

// IsUniversal reports whether the package targets both browser and workspace
// hosts.
func (m *PackageManifest) IsUniversal() bool {
	if m.Main != "" && m.Browser != "" {
		return true
	}
	return (m.HasKind(KindWeb) || m.HasKind(KindUI)) && m.HasKind(KindWorkspace)
}

// Label returns the display name, falling back to the name.
func (m *PackageManifest) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// StripRelative removes leading "./" and "/" markers from p.
func StripRelative(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		default:
			return p
		}
	}
}
