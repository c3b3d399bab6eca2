package domain

import "time"

// SummaryPlaceholder is attached to every entry saved from the chat view.
// It is a fixed annotation, not the output of any analysis.
const SummaryPlaceholder = "User expressed thoughts on current situation. Patterns suggest a need for reflection."

// JournalEntry is a single saved reflection.
//
// Entries are immutable once stored. The only way to remove them is to
// erase the whole journal.
type JournalEntry struct {
	// ID is generated by the client and must be unique across the journal.
	ID string `json:"id"`

	// Text is the user-authored content.
	Text string `json:"text"`

	// Timestamp is the creation time. Listing is newest first.
	Timestamp time.Time `json:"timestamp"`

	// Summary is an optional annotation. A nil Summary encodes as JSON null.
	Summary *string `json:"summary"`
}

// SummaryText returns the summary or an empty string.
func (e JournalEntry) SummaryText() string {
	if e.Summary == nil {
		return ""
	}
	return *e.Summary
}
