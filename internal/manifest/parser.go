package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrManifestParse is returned when package.json is not a JSON object.
var ErrManifestParse = errors.New("malformed package manifest")

// Parse decodes package.json bytes. Only malformed JSON, or a top-level value
// that is not an object, is an error.
func Parse(data []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnmarshalJSON implements json.Unmarshaler with per-field leniency.
func (m *PackageManifest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: top-level value is null", ErrManifestParse)
	}

	*m = PackageManifest{}
	for key, raw := range fields {
		if !m.decodeField(key, raw) {
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[key] = raw
		}
	}
	return nil
}

// decodeField assigns a recognised field and reports whether it was consumed.
func (m *PackageManifest) decodeField(key string, raw json.RawMessage) bool {
	switch key {
	case "name":
		return decodeString(raw, &m.Name)
	case "displayName":
		return decodeString(raw, &m.DisplayName)
	case "publisher":
		return decodeString(raw, &m.Publisher)
	case "version":
		return decodeString(raw, &m.Version)
	case "description":
		return decodeString(raw, &m.Description)
	case "main":
		return decodeString(raw, &m.Main)
	case "browser":
		return decodeString(raw, &m.Browser)
	case "activationEvents":
		return decodeStrings(raw, &m.ActivationEvents)
	case "extensionKind":
		return decodeStrings(raw, &m.ExtensionKind)
	case "contributes":
		var c map[string]json.RawMessage
		if err := json.Unmarshal(raw, &c); err != nil || c == nil {
			return false
		}
		m.Contributes = c
		return true
	case "engines":
		var e map[string]string
		if err := json.Unmarshal(raw, &e); err != nil {
			return false
		}
		m.Engines = e
		return true
	default:
		return false
	}
}

func decodeString(raw json.RawMessage, dst *string) bool {
	return json.Unmarshal(raw, dst) == nil
}

// decodeStrings accepts either a string array or a single string.
func decodeStrings(raw json.RawMessage, dst *[]string) bool {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		*dst = list
		return true
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		*dst = []string{one}
		return true
	}
	return false
}

// MarshalJSON writes the recognised fields over Extra, so a decode/encode
// cycle preserves unknown fields.
func (m PackageManifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+12)
	for k, v := range m.Extra {
		out[k] = v
	}
	setString(out, "name", m.Name)
	setString(out, "displayName", m.DisplayName)
	setString(out, "publisher", m.Publisher)
	setString(out, "version", m.Version)
	setString(out, "description", m.Description)
	setString(out, "main", m.Main)
	setString(out, "browser", m.Browser)
	if m.ActivationEvents != nil {
		out["activationEvents"] = m.ActivationEvents
	}
	if m.ExtensionKind != nil {
		out["extensionKind"] = m.ExtensionKind
	}
	if m.Contributes != nil {
		out["contributes"] = map[string]json.RawMessage(m.Contributes)
	}
	if m.Engines != nil {
		out["engines"] = m.Engines
	}
	return json.Marshal(out)
}

func setString(out map[string]any, key, v string) {
	if v != "" {
		out[key] = v
	}
}

// ExtraKeys returns the preserved unknown field names, sorted.
func (m *PackageManifest) ExtraKeys() []string {
	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
