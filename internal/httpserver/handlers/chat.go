package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// Chat relays a transcript to the model. A crisis answer carries no text.
func Chat(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, d.Logger, "decode chat request", err)
			return
		}

		reply, err := d.Chat.Reply(r.Context(), req)
		metrics.RecordChat(reply.Crisis, err)
		if err != nil {
			writeError(w, d.Logger, "chat reply", err)
			return
		}
		if reply.Crisis {
			// Content stays out of the logs; only the fact is recorded.
			d.Logger.Warn("crisis language detected", logger.String("persona", req.PersonaID))
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

// Personas lists the catalog.
func Personas(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Personas.All())
	}
}
