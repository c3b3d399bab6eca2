package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

type (
	// Registrar mounts one route group.
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// group is a named set of routes sharing middlewares.
type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups = map[string]group{}

// Register adds a route group from a route file's init(). Names are unique;
// registering one twice is a programming error.
func Register(name string, reg Registrar, mws ...Middleware) {
	if _, dup := groups[name]; dup {
		panic("routes: group " + name + " registered twice")
	}
	groups[name] = group{name: name, reg: reg, mws: mws}
}

// RegisterAll mounts every group on r in name order and returns the names.
// chi matches by pattern specificity, so order only affects the log.
func RegisterAll(r chi.Router, d deps.Deps) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := groups[name]
		if len(g.mws) == 0 {
			g.reg(r, d)
			continue
		}
		g.reg(r.With(g.mws...), d)
	}
	return names
}
