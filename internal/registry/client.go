package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/log"
)

var tracer = otel.Tracer("github.com/kispace-io/appspace/internal/registry")

// Client talks to an Open VSX style registry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the registry API base, e.g. "https://open-vsx.org/api".
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		if base != "" {
			cl.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(branding.RegistryURL(), "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the registry API base without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Search runs a free-text query and returns one page of results. Fields the
// registry omits default to an empty list, the requested offset and zero.
func (c *Client) Search(ctx context.Context, query string, size, offset int) (*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "registry.Search", trace.WithAttributes(attribute.String("registry.query", query)))
	defer span.End()

	q := url.Values{}
	q.Set("query", query)
	q.Set("size", strconv.Itoa(size))
	q.Set("offset", strconv.Itoa(offset))
	u := c.baseURL + "/-/search?" + q.Encode()

	var resp searchResponse
	if err := c.getJSON(ctx, "search", u, &resp); err != nil {
		recordError(span, err)
		return nil, err
	}

	result := &SearchResult{
		Extensions: resp.Extensions,
		Offset:     offset,
	}
	if result.Extensions == nil {
		result.Extensions = []*Extension{}
	}
	if resp.Offset != nil {
		result.Offset = *resp.Offset
	}
	if resp.TotalSize != nil {
		result.TotalSize = *resp.TotalSize
	}
	span.SetAttributes(attribute.Int("registry.total", result.TotalSize))
	return result, nil
}

// GetExtension fetches metadata for namespace.name at version. An empty
// version fetches the latest release.
func (c *Client) GetExtension(ctx context.Context, namespace, name, version string) (*Extension, error) {
	ctx, span := tracer.Start(ctx, "registry.GetExtension", trace.WithAttributes(
		attribute.String("extension.id", namespace+"."+name),
		attribute.String("extension.version", version),
	))
	defer span.End()

	u := c.baseURL + "/" + url.PathEscape(namespace) + "/" + url.PathEscape(name)
	if version != "" {
		u += "/" + url.PathEscape(version)
	}

	var ext Extension
	if err := c.getJSON(ctx, "get", u, &ext); err != nil {
		recordError(span, err)
		return nil, err
	}
	if ext.Namespace == "" {
		ext.Namespace = namespace
	}
	if ext.Name == "" {
		ext.Name = name
	}
	return &ext, nil
}

// Versions lists the published versions of namespace.name, newest first.
// Entries that are not valid semantic versions (such as "latest") are
// skipped.
func (c *Client) Versions(ctx context.Context, namespace, name string) ([]string, error) {
	ext, err := c.GetExtension(ctx, namespace, name, "")
	if err != nil {
		return nil, err
	}

	parsed := make([]*semver.Version, 0, len(ext.AllVersions))
	for v := range ext.AllVersions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, sv)
	}
	if len(parsed) == 0 && ext.Version != "" {
		return []string{ext.Version}, nil
	}
	sort.Sort(sort.Reverse(semver.Collection(parsed)))

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.Original()
	}
	return out, nil
}

// DownloadURL returns the artifact URL of ext. A download file advertised by
// the registry is returned unchanged; otherwise the URL is synthesized from
// the identity fields. ok is false when neither is possible.
func (c *Client) DownloadURL(ext *Extension) (string, bool) {
	if ext == nil {
		return "", false
	}
	if d := ext.Files["download"]; d != "" {
		return d, true
	}
	if ext.Namespace == "" || ext.Name == "" || ext.Version == "" {
		return "", false
	}
	return fmt.Sprintf("%s/%s/%s/%s/file/%s.%s-%s.%s",
		c.baseURL, ext.Namespace, ext.Name, ext.Version,
		ext.Namespace, ext.Name, ext.Version, PackageExtension), true
}

// ExtensionID returns the canonical "namespace.name" identifier of ext.
func ExtensionID(ext *Extension) string {
	return ext.Namespace + "." + ext.Name
}

// SplitID splits "namespace.name" at the first dot.
func SplitID(id string) (namespace, name string, err error) {
	ns, n, ok := strings.Cut(id, ".")
	if !ok || ns == "" || n == "" {
		return "", "", fmt.Errorf("invalid extension id %q: expected namespace.name", id)
	}
	return ns, n, nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RegistryError{Op: op, URL: u, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.UserAgent())

	log.Debug(log.CatRegistry, "request", "op", op, "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RegistryError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RegistryError{Op: op, URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RegistryError{Op: op, URL: u, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &RegistryError{Op: op, URL: u, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
