package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/things/{id}", "418"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/things/{id}", "418"))

	assert.Equal(t, 2.0, after-before)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestInstrumentHandlerUnmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/known", func(http.ResponseWriter, *http.Request) {})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))

	assert.Equal(t, 1.0, after-before)
}

func TestRecorders(t *testing.T) {
	tests := []struct {
		name   string
		record func()
		get    func() float64
	}{
		{
			name:   "journal error",
			record: func() { RecordJournal("append", errors.New("constraint")) },
			get:    func() float64 { return testutil.ToFloat64(journalOps.WithLabelValues("append", "error")) },
		},
		{
			name:   "lifetime checkout",
			record: func() { RecordCheckout("lifetime", nil) },
			get:    func() float64 { return testutil.ToFloat64(checkouts.WithLabelValues("lifetime", "ok")) },
		},
		{
			name:   "crisis chat",
			record: func() { RecordChat(true, nil) },
			get:    func() float64 { return testutil.ToFloat64(chatReplies.WithLabelValues("crisis")) },
		},
		{
			name:   "chat error wins over crisis",
			record: func() { RecordChat(true, errors.New("down")) },
			get:    func() float64 { return testutil.ToFloat64(chatReplies.WithLabelValues("error")) },
		},
		{
			name:   "rate limited",
			record: func() { RecordRateLimited("chat") },
			get:    func() float64 { return testutil.ToFloat64(rateLimited.WithLabelValues("chat")) },
		},
		{
			name:   "maintenance",
			record: func() { RecordMaintenance(nil) },
			get:    func() float64 { return testutil.ToFloat64(maintenanceRuns.WithLabelValues("ok")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.get()
			tt.record()
			assert.Equal(t, 1.0, tt.get()-before)
		})
	}
}
