package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
)

func withGroups(t *testing.T) {
	t.Helper()
	saved := groups
	groups = map[string]group{}
	t.Cleanup(func() { groups = saved })
}

func TestRegisterAllMountsInNameOrder(t *testing.T) {
	withGroups(t)

	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Group", "tagged")
			next.ServeHTTP(w, r)
		})
	}
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

	Register("zeta", func(r chi.Router, _ deps.Deps) { r.Get("/z", ok) })
	Register("alpha", func(r chi.Router, _ deps.Deps) { r.Get("/a", ok) }, tag)

	r := chi.NewRouter()
	names := RegisterAll(r, deps.Deps{})
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("names = %v, want [alpha zeta]", names)
	}

	tests := []struct {
		path string
		tag  string
	}{
		{"/a", "tagged"},
		{"/z", ""},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusNoContent {
			t.Errorf("%s: status = %d", tt.path, w.Code)
		}
		if got := w.Header().Get("X-Group"); got != tt.tag {
			t.Errorf("%s: X-Group = %q, want %q", tt.path, got, tt.tag)
		}
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	withGroups(t)
	Register("dup", func(chi.Router, deps.Deps) {})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate group")
		}
	}()
	Register("dup", func(chi.Router, deps.Deps) {})
}
