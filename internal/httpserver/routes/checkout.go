package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
)

func init() { Register("checkout", registerCheckout) }

func registerCheckout(r chi.Router, d deps.Deps) {
	rateLimited(guard(r, d), d, "checkout").Post("/api/create-checkout-session", handlers.CreateCheckoutSession(d))
}
