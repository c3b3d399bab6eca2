package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
)

func init() { Register("journal", registerJournal, middleware.NoCache) }

func registerJournal(r chi.Router, d deps.Deps) {
	g := guard(r, d)
	g.Get("/api/journal", handlers.ListJournal(d))
	g.Post("/api/journal", handlers.AppendJournal(d))
	g.Delete("/api/journal", handlers.ClearJournal(d))
}
