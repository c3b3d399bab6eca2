package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is fixed-width so that text order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 and SQLite's "YYYY-MM-DD HH:MM:SS" forms.
// Results are in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
