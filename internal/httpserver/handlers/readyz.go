package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports whether the journal database answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.Journal.Ping(ctx); err != nil {
			d.Logger.Warn("readiness probe failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
