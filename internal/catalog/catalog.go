// Package catalog loads the read-only persona catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

//go:embed personas.yaml
var builtin []byte

// Catalog is an ordered, immutable list of personas.
type Catalog struct {
	personas []domain.Persona
	byID     map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in persona catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of personas.
func Parse(data []byte) (*Catalog, error) {
	var personas []domain.Persona
	if err := yaml.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("failed to parse persona yaml: %w", err)
	}
	return New(personas)
}

// New validates personas and builds a catalog. The default persona must be
// present and free, and ids must be unique.
func New(personas []domain.Persona) (*Catalog, error) {
	c := &Catalog{
		personas: make([]domain.Persona, 0, len(personas)),
		byID:     make(map[string]int, len(personas)),
	}
	for _, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %q has no id", p.Name)
		}
		if p.ID == domain.LifetimeItemID {
			return nil, fmt.Errorf("persona id %q is reserved", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		if p.Tag != "" && p.Tag != domain.TagFeatured && p.Tag != domain.TagPopular {
			return nil, fmt.Errorf("persona %q has unknown tag %q", p.ID, p.Tag)
		}
		c.byID[p.ID] = len(c.personas)
		c.personas = append(c.personas, p)
	}

	idx, ok := c.byID[domain.DefaultPersonaID]
	if !ok {
		return nil, fmt.Errorf("catalog has no %q persona", domain.DefaultPersonaID)
	}
	if !c.personas[idx].Unlocked {
		return nil, fmt.Errorf("%q persona must be unlocked", domain.DefaultPersonaID)
	}
	return c, nil
}

// All returns a copy of the personas in catalog order.
func (c *Catalog) All() []domain.Persona {
	out := make([]domain.Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// Get looks a persona up by id.
func (c *Catalog) Get(id string) (domain.Persona, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Persona{}, false
	}
	return c.personas[i], true
}

// Has reports whether id names a persona.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Free returns the ids of personas unlocked without payment.
func (c *Catalog) Free() []string {
	var ids []string
	for _, p := range c.personas {
		if p.Unlocked {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
