package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/httpserver/mw"
)

// guard restricts /api routes to the configured hosts and networks.
// Both checks pass everything through when unconfigured.
func guard(r chi.Router, d deps.Deps) chi.Router {
	return r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
}

// rateLimited gives a route group its own limiter.
func rateLimited(r chi.Router, d deps.Deps, name string) chi.Router {
	return r.With(mw.RateLimit(mw.RateLimitConfig{
		Name:              name,
		Logger:            d.Logger,
		Burst:             d.CheckoutBurst,
		RefillPerIPPerMin: d.CheckoutPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))
}
