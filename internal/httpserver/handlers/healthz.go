package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

func Health(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Health{
			Status:           "ok",
			StripeConfigured: d.Billing != nil && d.Billing.Configured(),
			ChatConfigured:   d.Chat != nil && d.Chat.Configured(),
			Version:          d.Version,
			UptimeSeconds:    d.Now().Sub(start).Seconds(),
		})
	}
}
