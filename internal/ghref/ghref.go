// Package ghref parses human-supplied GitHub references into structured
// identifiers. Two spellings are accepted: a github.com web URL and the short
// "owner/repo[@ref][/path]" form. The package does no I/O.
package ghref

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultRef is the ref used when an identifier does not carry one.
const DefaultRef = "main"

// ErrMalformedIdentifier is returned when input matches neither grammar.
var ErrMalformedIdentifier = errors.New("malformed GitHub identifier")

// Identifier is a decoded GitHub reference. Ref and Path are empty when absent.
type Identifier struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Ref   string `json:"ref,omitempty"`
	Path  string `json:"path,omitempty"`
}

var (
	urlPattern   = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:/(tree|blob)/([^/]+))?(/.*)?$`)
	shortPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:@([^/]+))?(/.*)?$`)
)

// Parse decodes input. The URL grammar is tried before the short grammar.
// When no explicit ref marker is present ("/tree/", "/blob/" or "@"), the
// first path segment after owner/repo is taken as the ref.
func Parse(input string) (Identifier, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Identifier{}, fmt.Errorf("%w: empty input", ErrMalformedIdentifier)
	}

	if strings.HasPrefix(s, "github.com/") || strings.HasPrefix(s, "www.github.com/") {
		s = "https://" + s
	}

	if m := urlPattern.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[4], m[3] != "", m[5])
	}
	if strings.Contains(s, "://") {
		return Identifier{}, fmt.Errorf("%w: %q is not a github.com URL", ErrMalformedIdentifier, input)
	}
	if m := shortPattern.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3], m[3] != "", m[4])
	}
	return Identifier{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, input)
}

func build(owner, repo, ref string, explicitRef bool, rest string) (Identifier, error) {
	if owner == "" || repo == "" || owner == "." || owner == ".." || repo == "." || repo == ".." {
		return Identifier{}, fmt.Errorf("%w: missing owner or repository", ErrMalformedIdentifier)
	}

	rest = strings.Trim(rest, "/")
	if !explicitRef && rest != "" {
		ref, rest, _ = strings.Cut(rest, "/")
	}

	return Identifier{
		Owner: owner,
		Repo:  repo,
		Ref:   ref,
		Path:  rest,
	}, nil
}

// IsValid reports whether Parse accepts input.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

// ReferenceURL reconstructs the canonical github.com URL for id. The ref
// segment is omitted when id has neither ref nor path; a path without a ref
// is emitted under DefaultRef so the URL parses back to the same path.
func ReferenceURL(id Identifier) string {
	var b strings.Builder
	b.WriteString("https://github.com/")
	b.WriteString(id.Owner)
	b.WriteString("/")
	b.WriteString(id.Repo)

	ref := id.Ref
	if ref == "" && id.Path != "" {
		ref = DefaultRef
	}
	if ref != "" {
		b.WriteString("/tree/")
		b.WriteString(ref)
	}
	if id.Path != "" {
		b.WriteString("/")
		b.WriteString(id.Path)
	}
	return b.String()
}

// RefOrDefault returns the ref, or DefaultRef when none was given.
func (id Identifier) RefOrDefault() string {
	if id.Ref == "" {
		return DefaultRef
	}
	return id.Ref
}

// String renders id in short form.
func (id Identifier) String() string {
	s := id.Owner + "/" + id.Repo
	if id.Ref != "" {
		s += "@" + id.Ref
	}
	if id.Path != "" {
		s += "/" + id.Path
	}
	return s
}
