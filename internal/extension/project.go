package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kispace-io/appspace/internal/branding"
	"github.com/kispace-io/appspace/internal/ghref"
	"github.com/kispace-io/appspace/internal/registry"
)

// ErrDuplicate and ErrNotDeclared are returned by Project mutations.
var (
	ErrDuplicate   = errors.New("extension already declared")
	ErrNotDeclared = errors.New("extension not declared")
)

// Project is the appspace.yaml project file.
type Project struct {
	Extensions []Declaration `yaml:"extensions"`
}

// Declaration is one extension entry. Exactly one of ID or GitHub is set.
type Declaration struct {
	ID      string `yaml:"id,omitempty"`      // registry "namespace.name"
	Version string `yaml:"version,omitempty"` // pinned registry version; latest when empty
	GitHub  string `yaml:"github,omitempty"`  // GitHub reference, URL or owner/repo[@ref][/path]
}

// Key identifies the declaration within a project.
func (d Declaration) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.GitHub
}

// Validate checks that d names exactly one well-formed source.
func (d Declaration) Validate() error {
	switch {
	case d.ID != "" && d.GitHub != "":
		return fmt.Errorf("declaration %q sets both id and github", d.Key())
	case d.ID != "":
		if _, _, err := registry.SplitID(d.ID); err != nil {
			return err
		}
	case d.GitHub != "":
		if d.Version != "" {
			return fmt.Errorf("declaration %q: version applies to registry extensions only; put the ref in the reference", d.GitHub)
		}
		if _, err := ghref.Parse(d.GitHub); err != nil {
			return err
		}
	default:
		return fmt.Errorf("declaration needs an id or a github reference")
	}
	return nil
}

// ProjectPath returns the project file path under root.
func ProjectPath(root string) string {
	return filepath.Join(root, branding.ProjectFile())
}

// LoadProject reads and parses a project file. A missing file yields an
// empty project.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", path, err)
	}
	for i, d := range p.Extensions {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("parsing project %s: extension %d: %w", path, i, err)
		}
	}
	return &p, nil
}

// SaveProject writes the project back to path.
func SaveProject(path string, p *Project) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing project %s: %w", path, err)
	}
	return nil
}

// Find returns the declaration with the given key, or nil.
func (p *Project) Find(key string) *Declaration {
	for i := range p.Extensions {
		if p.Extensions[i].Key() == key {
			return &p.Extensions[i]
		}
	}
	return nil
}

// Add appends d after validating it.
func (p *Project) Add(d Declaration) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if p.Find(d.Key()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Key())
	}
	p.Extensions = append(p.Extensions, d)
	return nil
}

// Remove deletes the declaration with the given key.
func (p *Project) Remove(key string) error {
	for i, d := range p.Extensions {
		if d.Key() == key {
			p.Extensions = append(p.Extensions[:i], p.Extensions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotDeclared, key)
}
