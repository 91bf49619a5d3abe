package loader

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	gocache "github.com/patrickmn/go-cache"

	"github.com/kispace-io/appspace/internal/log"
)

// Repository holds the loaded packages, one per extension identifier. Putting
// a package replaces whatever version was held for that identifier. Safe for
// concurrent use.
type Repository struct {
	cache *gocache.Cache
}

// NewRepository returns an empty repository whose entries never expire.
func NewRepository() *Repository {
	return &Repository{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the package held for extensionID.
func (r *Repository) Get(extensionID string) (*Package, bool) {
	v, found := r.cache.Get(extensionID)
	if !found {
		return nil, false
	}
	pkg, ok := v.(*Package)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "key", extensionID)
		return nil, false
	}
	return pkg, true
}

// Put stores pkg, superseding any entry for the same identifier.
func (r *Repository) Put(pkg *Package) {
	if prev, ok := r.Get(pkg.ExtensionID); ok && prev.Version != pkg.Version {
		log.Debug(log.CatCache, supersedeVerb(prev.Version, pkg.Version)+" in-memory package",
			"extension", pkg.ExtensionID, "from", prev.Version, "to", pkg.Version)
	}
	r.cache.Set(pkg.ExtensionID, pkg, gocache.NoExpiration)
}

// Delete drops the entry for extensionID.
func (r *Repository) Delete(extensionID string) {
	r.cache.Delete(extensionID)
}

// List returns every held package ordered by identifier.
func (r *Repository) List() []*Package {
	items := r.cache.Items()
	out := make([]*Package, 0, len(items))
	for _, item := range items {
		if pkg, ok := item.Object.(*Package); ok {
			out = append(out, pkg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExtensionID < out[j].ExtensionID })
	return out
}

// Len returns the number of held packages.
func (r *Repository) Len() int {
	return r.cache.ItemCount()
}

// Flush empties the repository.
func (r *Repository) Flush() {
	r.cache.Flush()
}

func supersedeVerb(from, to string) string {
	a, errA := semver.NewVersion(from)
	b, errB := semver.NewVersion(to)
	if errA != nil || errB != nil {
		return "replacing"
	}
	if b.LessThan(a) {
		return "downgrading"
	}
	return "upgrading"
}
