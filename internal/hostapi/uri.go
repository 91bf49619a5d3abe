package hostapi

import (
	"fmt"
	"net/url"
	"strings"
)

// URI identifies a resource. Only Path is used to address workspace files.
type URI struct {
	Scheme    string `json:"scheme"`
	Authority string `json:"authority,omitempty"`
	Path      string `json:"path"`
	Query     string `json:"query,omitempty"`
	Fragment  string `json:"fragment,omitempty"`
}

// FileURI returns a file-scheme URI for path.
func FileURI(path string) URI {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return URI{Scheme: "file", Path: path}
}

// ParseURI parses s. A string without a scheme is treated as a file path.
func ParseURI(s string) (URI, error) {
	if !strings.Contains(s, ":") || strings.HasPrefix(s, "/") {
		return FileURI(s), nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return URI{}, fmt.Errorf("parsing URI %q: %w", s, err)
	}
	return URI{
		Scheme:    u.Scheme,
		Authority: u.Host,
		Path:      u.Path,
		Query:     u.RawQuery,
		Fragment:  u.Fragment,
	}, nil
}

// FSPath returns the filesystem path of u.
func (u URI) FSPath() string { return u.Path }

func (u URI) String() string {
	v := url.URL{Scheme: u.Scheme, Host: u.Authority, Path: u.Path, RawQuery: u.Query, Fragment: u.Fragment}
	if u.Scheme == "file" && u.Authority == "" {
		return "file://" + v.EscapedPath()
	}
	return v.String()
}

// pathOf extracts a resource path from a string, URI, *URI or any value with
// an FSPath method.
func pathOf(ref any) (string, error) {
	switch v := ref.(type) {
	case string:
		u, err := ParseURI(v)
		if err != nil {
			return "", err
		}
		return u.Path, nil
	case URI:
		return v.Path, nil
	case *URI:
		if v == nil {
			return "", fmt.Errorf("nil URI")
		}
		return v.Path, nil
	case interface{ FSPath() string }:
		return v.FSPath(), nil
	default:
		return "", fmt.Errorf("unsupported resource reference %T", ref)
	}
}
