package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers 500 with the error text. Every failure on these routes
// is reported the same way.
func writeError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	log.Error(op+" failed", logger.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
