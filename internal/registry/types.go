package registry

import "time"

// PackageExtension is the file suffix of registry package artifacts.
const PackageExtension = "vsix"

// Extension is the registry metadata for one extension version. Only the
// identity fields are guaranteed; everything else is display metadata the
// registry may omit.
type Extension struct {
	Namespace     string            `json:"namespace"`
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	DisplayName   string            `json:"displayName,omitempty"`
	Description   string            `json:"description,omitempty"`
	Files         map[string]string `json:"files,omitempty"` // download, manifest, icon, readme, ...
	Timestamp     string            `json:"timestamp,omitempty"`
	DownloadCount int64             `json:"downloadCount,omitempty"`
	AverageRating float64           `json:"averageRating,omitempty"`
	AllVersions   map[string]string `json:"allVersions,omitempty"` // version -> metadata URL
	Verified      bool              `json:"verified,omitempty"`
}

// PublishedAt parses Timestamp. The zero time is returned when it is absent
// or malformed.
func (e *Extension) PublishedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Label returns the display name, or namespace.name when the registry did
// not supply one.
func (e *Extension) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return ExtensionID(e)
}

// SearchResult is one page of search results.
type SearchResult struct {
	Extensions []*Extension `json:"extensions"`
	Offset     int          `json:"offset"`
	TotalSize  int          `json:"totalSize"`
}

// searchResponse mirrors SearchResult with optional fields so absent values
// can be told apart from zero.
type searchResponse struct {
	Extensions []*Extension `json:"extensions"`
	Offset     *int         `json:"offset"`
	TotalSize  *int         `json:"totalSize"`
}
