package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

// ListJournal returns every entry, newest first.
func ListJournal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Journal.ListAll(r.Context())
		metrics.RecordJournal("list", err)
		if err != nil {
			writeError(w, d.Logger, "list journal", err)
			return
		}
		if entries == nil {
			entries = []domain.JournalEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// appendRequest mirrors domain.JournalEntry but takes the timestamp as
// sent, so any client clock format is stored rather than rejected.
type appendRequest struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp"`
	Summary   *string         `json:"summary"`
}

// entryTime reads a JSON string in any stored layout or a number of Unix
// milliseconds. Anything else yields the zero time, which the store
// replaces with the current time.
func entryTime(raw json.RawMessage) (time.Time, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		t, err := domain.ParseTimestamp(strings.TrimSpace(text))
		return t, err == nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// AppendJournal stores one entry. Ids are chosen by the client.
func AppendJournal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, d.Logger, "decode journal entry", err)
			return
		}
		entry := domain.JournalEntry{ID: req.ID, Text: req.Text, Summary: req.Summary}
		if len(req.Timestamp) > 0 && string(req.Timestamp) != "null" {
			ts, ok := entryTime(req.Timestamp)
			if !ok {
				d.Logger.Debug("unreadable journal timestamp, using current time", logger.String("id", req.ID))
			}
			entry.Timestamp = ts
		}

		err := d.Journal.Append(r.Context(), entry)
		metrics.RecordJournal("append", err)
		if err != nil {
			writeError(w, d.Logger, "append journal entry", err)
			return
		}
		d.Logger.Debug("journal entry stored", logger.String("id", entry.ID))
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// ClearJournal erases every entry.
func ClearJournal(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Journal.ClearAll(r.Context())
		metrics.RecordJournal("clear", err)
		if err != nil {
			writeError(w, d.Logger, "clear journal", err)
			return
		}
		d.Logger.Info("journal incinerated", logger.Int64("entries", n))
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
