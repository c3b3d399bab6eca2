package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/session"
)

func render(st session.State, draft string) string {
	var buf bytes.Buffer
	Render(&buf, st, draft)
	return buf.String()
}

func personas() []domain.Persona {
	all := catalog.Default().All()
	for i := range all {
		all[i].Unlocked = all[i].ID == domain.DefaultPersonaID || all[i].ID == "zen"
	}
	return all
}

func TestRenderOnboarding(t *testing.T) {
	out := render(session.State{View: session.ViewOnboarding}, "")
	if !strings.Contains(out, "/agree") {
		t.Fatalf("onboarding does not explain how to continue:\n%s", out)
	}
}

func TestRenderChat(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	st := session.State{
		View:            session.ViewChat,
		ActivePersonaID: domain.DefaultPersonaID,
		Personas:        personas(),
		Transcript: []session.Message{
			{Role: chat.RoleModel, Text: "Hello.", Timestamp: at},
			{Role: chat.RoleUser, Text: "rough day", Timestamp: at},
			{Role: chat.RoleUser, Text: "kept this one", Timestamp: at, Saved: true},
		},
		Busy: true,
	}

	out := render(st, "half a thought")

	for _, want := range []string{
		"=== Default ===",
		"[1] 09:30 AI   Hello.",
		"[2] 09:30 You  rough day  (/save 2)",
		"[3] 09:30 You  kept this one  ✓ saved to vault",
		"... thinking",
		"draft: half a thought",
		"switch with /persona <id>: zen",
		"/unlock",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(/save 1)") {
		t.Errorf("model messages must not be saveable:\n%s", out)
	}
}

func TestRenderChatLifetime(t *testing.T) {
	st := session.State{
		View:             session.ViewChat,
		ActivePersonaID:  domain.DefaultPersonaID,
		LifetimeUnlocked: true,
		Personas:         personas(),
	}
	out := render(st, "")
	if !strings.Contains(out, "♛") || strings.Contains(out, "tip: /unlock") {
		t.Fatalf("lifetime chat header wrong:\n%s", out)
	}
}

func TestRenderSettings(t *testing.T) {
	st := session.State{
		View:            session.ViewSettings,
		ActivePersonaID: "zen",
		Personas:        personas(),
		Health:          &domain.Health{Status: "ok"},
	}
	out := render(st, "")

	for _, want := range []string{
		"$49.99",
		"payments are not configured",
		"* zen",
		"[popular]",
		"[featured]",
		"$14.99 (/buy shadow)",
		"unlocked (/persona default)",
		"/incinerate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderJournal(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := render(session.State{View: session.ViewJournal}, "")
		if !strings.Contains(out, "Your journal is empty") {
			t.Fatalf("no empty state:\n%s", out)
		}
	})

	summary := domain.SummaryPlaceholder
	var entries []domain.JournalEntry
	for i := 0; i < 6; i++ {
		entries = append(entries, domain.JournalEntry{
			ID:        fmt.Sprintf("e%d", i),
			Text:      fmt.Sprintf("entry %d", i),
			Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Summary:   &summary,
		})
	}

	t.Run("free tier over the limit", func(t *testing.T) {
		out := render(session.State{View: session.ViewJournal, Journal: entries}, "")
		if !strings.Contains(out, "Premium Feature") {
			t.Fatalf("no free tier notice:\n%s", out)
		}
		if !strings.Contains(out, "entry 5") || !strings.Contains(out, "AI pattern analysis: "+summary) {
			t.Fatalf("entries missing:\n%s", out)
		}
	})

	t.Run("lifetime", func(t *testing.T) {
		out := render(session.State{View: session.ViewJournal, Journal: entries, LifetimeUnlocked: true}, "")
		if strings.Contains(out, "Premium Feature") {
			t.Fatalf("lifetime users see the notice:\n%s", out)
		}
	})

	t.Run("at the limit", func(t *testing.T) {
		out := render(session.State{View: session.ViewJournal, Journal: entries[:5]}, "")
		if strings.Contains(out, "Premium Feature") {
			t.Fatalf("notice shown at exactly the limit:\n%s", out)
		}
	})
}

func TestRenderCrisisReplacesView(t *testing.T) {
	st := session.State{
		View:            session.ViewChat,
		ActivePersonaID: domain.DefaultPersonaID,
		Personas:        personas(),
		Crisis:          true,
	}
	out := render(st, "")
	if strings.Contains(out, "=== Default ===") {
		t.Fatalf("chat rendered under the overlay:\n%s", out)
	}
	for _, want := range []string{"988", "741741", "/ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
