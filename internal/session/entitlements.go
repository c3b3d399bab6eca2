package session

import (
	"sort"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

// Entitlements records what this client may use. The active persona is
// always one of the unlocked ones, and the default persona is always unlocked.
type Entitlements struct {
	lifetime bool
	unlocked map[string]struct{}
	active   string
}

// NewEntitlements starts from the free personas with the default one active.
func NewEntitlements(free []string) Entitlements {
	e := Entitlements{
		unlocked: make(map[string]struct{}, len(free)+1),
		active:   domain.DefaultPersonaID,
	}
	e.unlocked[domain.DefaultPersonaID] = struct{}{}
	for _, id := range free {
		e.unlocked[id] = struct{}{}
	}
	return e
}

func (e Entitlements) LifetimeUnlocked() bool { return e.lifetime }
func (e Entitlements) ActivePersonaID() string { return e.active }

func (e Entitlements) IsUnlocked(id string) bool {
	_, ok := e.unlocked[id]
	return ok
}

// UnlockedIDs returns the unlocked persona ids, sorted.
func (e Entitlements) UnlockedIDs() []string {
	out := make([]string, 0, len(e.unlocked))
	for id := range e.unlocked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Select activates id if it is unlocked and reports whether the active
// persona changed.
func (e *Entitlements) Select(id string) bool {
	if !e.IsUnlocked(id) || e.active == id {
		return false
	}
	e.active = id
	return true
}

func (e *Entitlements) unlock(id string) {
	e.unlocked[id] = struct{}{}
}

func (e *Entitlements) unlockLifetime() {
	e.lifetime = true
}

func (e Entitlements) clone() Entitlements {
	c := e
	c.unlocked = make(map[string]struct{}, len(e.unlocked))
	for id := range e.unlocked {
		c.unlocked[id] = struct{}{}
	}
	return c
}
