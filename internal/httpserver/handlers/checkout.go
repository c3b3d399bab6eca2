package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/billing"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

type checkoutRequest struct {
	PriceID   string `json:"priceId"` // accepted for compatibility, pricing is server side
	Email     string `json:"email"`
	PersonaID string `json:"personaId"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func CreateCheckoutSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, d.Logger, "decode checkout request", err)
			return
		}

		sess, err := d.Billing.CreateCheckoutSession(r.Context(), billing.CheckoutRequest{
			ItemID:       body.PersonaID,
			Email:        body.Email,
			ReturnOrigin: billing.ResolveOrigin(r.Header.Get("Origin"), d.AppURL),
		})
		metrics.RecordCheckout(checkoutKind(body.PersonaID), err)
		if err != nil {
			writeError(w, d.Logger, "create checkout session", err)
			return
		}

		d.Logger.Info("checkout session created",
			logger.String("item", body.PersonaID),
			logger.String("session_id", sess.ID))
		writeJSON(w, http.StatusOK, checkoutResponse{URL: sess.URL})
	}
}

func checkoutKind(itemID string) string {
	if itemID == domain.LifetimeItemID {
		return "lifetime"
	}
	return "persona"
}
