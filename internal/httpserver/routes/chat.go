package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
)

func init() {
	Register("chat", registerChat, middleware.NoCache)
	Register("personas", registerPersonas)
}

func registerChat(r chi.Router, d deps.Deps) {
	rateLimited(guard(r, d), d, "chat").Post("/api/chat", handlers.Chat(d))
}

func registerPersonas(r chi.Router, d deps.Deps) {
	guard(r, d).Get("/api/personas", handlers.Personas(d))
}
