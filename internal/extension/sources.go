package extension

import (
	"github.com/kispace-io/appspace/internal/ghref"
	"github.com/kispace-io/appspace/internal/registry"
)

// SourceKind tells where a declaration is acquired from.
type SourceKind string

const (
	SourceRegistry SourceKind = "registry"
	SourceGitHub   SourceKind = "github"
)

// Source is a declaration decoded into its acquisition coordinates.
type Source struct {
	Key       string
	Kind      SourceKind
	Namespace string           // registry only
	Name      string           // registry only
	Version   string           // registry only; empty means latest
	Ref       ghref.Identifier // github only
}

// BuildSources decodes every declaration of p in declared order. Declarations
// were validated on load, so decode errors only arise for projects built in
// memory; they are returned for the first offending entry.
func BuildSources(p *Project) ([]Source, error) {
	sources := make([]Source, 0, len(p.Extensions))
	for _, d := range p.Extensions {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.ID != "" {
			ns, name, _ := registry.SplitID(d.ID)
			sources = append(sources, Source{
				Key:       d.Key(),
				Kind:      SourceRegistry,
				Namespace: ns,
				Name:      name,
				Version:   d.Version,
			})
			continue
		}
		ref, _ := ghref.Parse(d.GitHub)
		sources = append(sources, Source{
			Key:  d.Key(),
			Kind: SourceGitHub,
			Ref:  ref,
		})
	}
	return sources, nil
}
