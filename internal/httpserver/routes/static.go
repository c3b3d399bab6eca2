package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

func init() { Register("static", registerStatic) }

// registerStatic serves the built front end on every non-API path.
func registerStatic(r chi.Router, d deps.Deps) {
	if d.StaticDir == "" {
		return
	}
	r.Handle("/*", http.FileServer(http.Dir(d.StaticDir)))
}
