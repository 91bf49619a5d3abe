package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/log"
	"github.com/kispace-io/appspace/internal/registry"
	"github.com/kispace-io/appspace/internal/store"
)

var tracer = otel.Tracer("github.com/kispace-io/appspace/internal/loader")

// Loader downloads, unpacks and caches extension packages.
type Loader struct {
	httpClient *http.Client
	registry   *registry.Client
	store      store.Store
	repo       *Repository
	progress   ProgressFunc
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for artifact downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.httpClient = c
	}
}

// WithRegistry sets the registry client used to derive download URLs.
func WithRegistry(c *registry.Client) Option {
	return func(l *Loader) {
		l.registry = c
	}
}

// WithStore sets the persistent cache. Without one, packages are only held
// in memory.
func WithStore(s store.Store) Option {
	return func(l *Loader) {
		l.store = s
	}
}

// WithRepository shares an in-memory repository between loaders.
func WithRepository(r *Repository) Option {
	return func(l *Loader) {
		l.repo = r
	}
}

// WithProgress registers a state transition callback.
func WithProgress(fn ProgressFunc) Option {
	return func(l *Loader) {
		l.progress = fn
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = registry.New(registry.WithHTTPClient(l.httpClient))
	}
	if l.repo == nil {
		l.repo = NewRepository()
	}
	return l
}

// Repository returns the in-memory repository.
func (l *Loader) Repository() *Repository { return l.repo }

// LoadFromRegistryExtension loads ext, consulting the in-memory repository
// and then the persistent store before downloading. A hit requires an exact
// version match; an empty ext.Version always downloads the registry's
// advertised artifact.
func (l *Loader) LoadFromRegistryExtension(ctx context.Context, ext *registry.Extension) (*Package, error) {
	if ext == nil {
		return nil, fmt.Errorf("%w: no extension given", ErrNoDownloadURL)
	}
	id := registry.ExtensionID(ext)
	l.transition(id, StateUnresolved, nil)

	if ext.Version != "" {
		if pkg, ok := l.repo.Get(id); ok && pkg.Version == ext.Version {
			log.Debug(log.CatLoader, "in-memory hit", "extension", id, "version", ext.Version)
			l.transition(id, StateReady, nil)
			return pkg, nil
		}
		if pkg := l.CachedPackage(ctx, id, ext.Version); pkg != nil {
			l.transition(id, StateReady, nil)
			return pkg, nil
		}
	}

	u, ok := l.registry.DownloadURL(ext)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoDownloadURL, id)
		l.transition(id, StateFailed, err)
		return nil, err
	}
	return l.load(ctx, id, u, ext)
}

// LoadFromURL downloads and unpacks the artifact at url. ext, when non-nil,
// supplies the package identity.
func (l *Loader) LoadFromURL(ctx context.Context, url string, ext *registry.Extension) (*Package, error) {
	id := url
	if ext != nil {
		id = registry.ExtensionID(ext)
	}
	l.transition(id, StateUnresolved, nil)
	return l.load(ctx, id, url, ext)
}

func (l *Loader) load(ctx context.Context, id, url string, ext *registry.Extension) (*Package, error) {
	ctx, span := tracer.Start(ctx, "loader.Load", trace.WithAttributes(
		attribute.String("extension.id", id),
		attribute.String("package.url", url),
	))
	defer span.End()

	fail := func(err error) (*Package, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.transition(id, StateFailed, err)
		return nil, err
	}

	l.transition(id, StateDownloading, nil)
	data, err := l.download(ctx, url)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.Int("package.bytes", len(data)))

	pkg, err := Unpack(data, ext)
	if err != nil {
		return fail(fmt.Errorf("unpacking %s: %w", id, err))
	}
	l.transition(pkg.ExtensionID, StateUnpacked, nil)

	l.persist(ctx, pkg)
	l.transition(pkg.ExtensionID, StateCached, nil)

	l.repo.Put(pkg)
	span.SetAttributes(attribute.Int("package.files", len(pkg.Files)))
	log.Info(log.CatLoader, "package loaded", "extension", pkg.ExtensionID, "version", pkg.Version,
		"files", len(pkg.Files), "warnings", len(pkg.Warnings))
	l.transition(pkg.ExtensionID, StateReady, nil)
	return pkg, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", branding.UserAgent())

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDownloadFailed, url, err)
	}
	return data, nil
}

// persist writes pkg to the store. Failures are logged and swallowed.
func (l *Loader) persist(ctx context.Context, pkg *Package) {
	if l.store == nil {
		return
	}
	key := CacheKey(pkg.ExtensionID, pkg.Version)
	data, err := json.Marshal(pkg)
	if err != nil {
		log.WarnErr(log.CatCache, "encoding package for cache failed", err, "key", key)
		return
	}
	if err := l.store.Put(ctx, key, data); err != nil {
		log.WarnErr(log.CatCache, "cache write failed", err, "key", key)
	}
}

// CachedPackage returns the persisted package for extensionID at exactly
// version, or nil on a miss, a version mismatch or any read or decode
// failure. A hit is placed in the in-memory repository.
func (l *Loader) CachedPackage(ctx context.Context, extensionID, version string) *Package {
	if l.store == nil || extensionID == "" || version == "" {
		return nil
	}
	key := CacheKey(extensionID, version)

	data, err := l.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug(log.CatCache, "cache miss", "key", key)
		return nil
	}
	if err != nil {
		log.WarnErr(log.CatCache, "cache read failed", err, "key", key)
		return nil
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		log.WarnErr(log.CatCache, "cache record unreadable", err, "key", key)
		return nil
	}
	if pkg.Version != version || pkg.ExtensionID != extensionID {
		log.Debug(log.CatCache, "cache record mismatch", "key", key, "version", pkg.Version)
		return nil
	}
	if pkg.Files == nil {
		pkg.Files = map[string]string{}
	}

	log.Debug(log.CatCache, "cache hit", "key", key)
	l.repo.Put(&pkg)
	return &pkg
}

// Evict drops extensionID from memory and, when version is non-empty, its
// persisted record.
func (l *Loader) Evict(ctx context.Context, extensionID, version string) error {
	l.repo.Delete(extensionID)
	if l.store == nil || version == "" {
		return nil
	}
	if err := l.store.Delete(ctx, CacheKey(extensionID, version)); err != nil {
		return fmt.Errorf("evicting %s@%s: %w", extensionID, version, err)
	}
	return nil
}

func (l *Loader) transition(id string, s State, err error) {
	if err != nil {
		log.Debug(log.CatLoader, "state", "extension", id, "state", s.String(), "error", err)
	} else {
		log.Debug(log.CatLoader, "state", "extension", id, "state", s.String())
	}
	if l.progress != nil {
		l.progress(id, s, err)
	}
}
