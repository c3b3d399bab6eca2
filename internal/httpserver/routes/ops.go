package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/vault/internal/httpserver/mw"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

func init() { Register("ops", registerOps) }

// Probes and metrics are for operators: network allow list only, no host check.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Handle("/metrics", metrics.Handler())
}
