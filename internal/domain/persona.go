package domain

import "fmt"

// DefaultPersonaID is the persona every session starts with. It is always unlocked.
const DefaultPersonaID = "default"

// LifetimeItemID is the checkout item that unlocks long-term memory.
// It is not a persona.
const LifetimeItemID = "lifetime"

// Persona tags shown next to a persona in the catalog.
const (
	TagFeatured = "featured"
	TagPopular  = "popular"
)

// Persona is a named system-prompt configuration.
// Personas are static configuration, never persisted.
type Persona struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Prompt      string `json:"-" yaml:"prompt"`
	PriceCents  int64  `json:"priceCents,omitempty" yaml:"price_cents,omitempty"`
	Unlocked    bool   `json:"unlocked" yaml:"unlocked"`
	Tag         string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// PriceLabel formats the price the way the paywall shows it, e.g. "$9.99".
// Free personas have an empty label.
func (p Persona) PriceLabel() string {
	if p.PriceCents <= 0 {
		return ""
	}
	return fmt.Sprintf("$%d.%02d", p.PriceCents/100, p.PriceCents%100)
}
