package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/ghref"
	"github.com/kispace-io/appspace/internal/log"
)

// ErrEntryPointNotFound is returned when no entry-point candidate resolves.
var ErrEntryPointNotFound = errors.New("extension entry point not found")

// conventionalNames is the probe order used when neither an explicit path
// nor a package.json main field is available.
var conventionalNames = []string{
	"index.ts",
	"index.js",
	"extension.ts",
	"extension.js",
	"main.ts",
	"main.js",
	"src/index.ts",
	"src/extension.ts",
	"src/main.ts",
	"src/index.js",
	"src/extension.js",
}

var tracer = otel.Tracer("github.com/kispace-io/appspace/internal/resolver")

// EntryPoint is the resolved executable file of a GitHub-hosted extension.
type EntryPoint struct {
	Path       string `json:"path"`
	Transpiled bool   `json:"transpiled"` // served from TypeScript source
	URL        string `json:"url"`
}

// Resolver discovers entry points through the GitHub contents API and the
// CDN transform endpoint.
type Resolver struct {
	httpClient *http.Client
	cdnBase    string
	apiBase    string
	token      string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// WithCDNBase overrides the CDN transform endpoint base URL.
func WithCDNBase(base string) Option {
	return func(r *Resolver) {
		if base != "" {
			r.cdnBase = strings.TrimRight(base, "/")
		}
	}
}

// WithAPIBase overrides the GitHub REST API base URL.
func WithAPIBase(base string) Option {
	return func(r *Resolver) {
		if base != "" {
			r.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sets a GitHub token for higher API rate limits.
func WithToken(token string) Option {
	return func(r *Resolver) {
		r.token = token
	}
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: http.DefaultClient,
		cdnBase:    strings.TrimRight(branding.CDNURL(), "/"),
		apiBase:    strings.TrimRight(branding.GitHubAPIURL(), "/"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CDNURL returns the transform endpoint URL serving file p of id.
func (r *Resolver) CDNURL(id ghref.Identifier, p string) string {
	return fmt.Sprintf("%s/gh/%s/%s@%s/%s", r.cdnBase, id.Owner, id.Repo, id.RefOrDefault(), strings.TrimPrefix(p, "/"))
}

// ResolveEntryPoint determines the entry file of id. Candidates are tried in
// strict priority order and the first success wins:
//  1. the explicit path carried by id
//  2. the main field of the repository's package.json at id's ref
//  3. the first conventional file name the CDN answers for
func (r *Resolver) ResolveEntryPoint(ctx context.Context, id ghref.Identifier) (*EntryPoint, error) {
	ctx, span := tracer.Start(ctx, "resolver.ResolveEntryPoint")
	defer span.End()
	span.SetAttributes(attribute.String("github.repo", id.Owner+"/"+id.Repo), attribute.String("github.ref", id.Ref))

	if id.Path != "" {
		return r.entryPoint(id, id.Path), nil
	}

	main, err := r.fetchMainField(ctx, id)
	if err != nil {
		log.Debug(log.CatResolver, "package.json lookup failed, probing conventional names", "repo", id.String(), "error", err)
	} else if main != "" {
		return r.entryPoint(id, main), nil
	}

	for _, name := range conventionalNames {
		ok, err := r.probe(ctx, r.CDNURL(id, name))
		if err != nil {
			log.Debug(log.CatResolver, "probe failed", "repo", id.String(), "candidate", name, "error", err)
			continue
		}
		if ok {
			return r.entryPoint(id, name), nil
		}
	}

	err = fmt.Errorf("%w: %s", ErrEntryPointNotFound, id.String())
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// ResolveExtensionURL parses input, resolves its entry point and returns the
// CDN URL serving it.
func (r *Resolver) ResolveExtensionURL(ctx context.Context, input string) (string, error) {
	id, err := ghref.Parse(input)
	if err != nil {
		return "", err
	}
	ep, err := r.ResolveEntryPoint(ctx, id)
	if err != nil {
		return "", err
	}
	return ep.URL, nil
}

// IsGitHubURL reports whether input is a parseable GitHub reference.
func IsGitHubURL(input string) bool {
	return ghref.IsValid(input)
}

func (r *Resolver) entryPoint(id ghref.Identifier, p string) *EntryPoint {
	p = strings.TrimPrefix(strings.TrimPrefix(p, "./"), "/")
	return &EntryPoint{
		Path:       p,
		Transpiled: isSourceScript(p),
		URL:        r.CDNURL(id, p),
	}
}

func isSourceScript(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".tsx":
		return true
	default:
		return false
	}
}

// contentEnvelope is the GitHub contents API response for a single file.
type contentEnvelope struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// fetchMainField returns the main field of package.json at id's ref, or ""
// when the file has none.
func (r *Resolver) fetchMainField(ctx context.Context, id ghref.Identifier) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/package.json", r.apiBase, id.Owner, id.Repo)
	if id.Ref != "" {
		u += "?ref=" + url.QueryEscape(id.Ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", branding.UserAgent())
	if r.token != "" {
		req.Header.Set("Authorization", "token "+r.token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching package.json: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("package.json not found")
	}
	if resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("GitHub API rate limit exceeded. Set a github_token for higher limits")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var env contentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("parsing contents envelope: %w", err)
	}

	raw := []byte(env.Content)
	if env.Encoding == "base64" {
		// GitHub wraps base64 content at 60 columns.
		raw, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(env.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decoding package.json content: %w", err)
		}
	}

	var pkg struct {
		Main any `json:"main"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", fmt.Errorf("parsing package.json: %w", err)
	}
	main, _ := pkg.Main.(string)
	return strings.TrimSpace(main), nil
}

// probe issues a HEAD request and reports whether the CDN serves u.
func (r *Resolver) probe(ctx context.Context, u string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", branding.UserAgent())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
