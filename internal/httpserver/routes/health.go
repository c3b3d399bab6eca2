package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
)

func init() { Register("health", registerHealth, middleware.NoCache) }

func registerHealth(r chi.Router, d deps.Deps) {
	guard(r, d).Get("/api/health", handlers.Health(d))
}
