package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/safety"
	"github.com/MrSnakeDoc/vault/internal/session"
)

// freeJournalLimit is where the journal view starts suggesting the lifetime unlock.
const freeJournalLimit = 5

const timeLayout = "15:04"

// Render writes the view for st. The crisis overlay replaces whatever
// view is active.
func Render(w io.Writer, st session.State, draft string) {
	if st.Crisis {
		renderCrisis(w)
		return
	}

	switch st.View {
	case session.ViewOnboarding:
		renderOnboarding(w)
	case session.ViewChat:
		renderChat(w, st, draft)
	case session.ViewSettings:
		renderSettings(w, st)
	case session.ViewJournal:
		renderJournal(w, st)
	default:
		fmt.Fprintf(w, "unknown view %v\n", st.View)
	}
}

func renderOnboarding(w io.Writer) {
	fmt.Fprintln(w, "=== Privacy Vault ===")
	fmt.Fprintln(w, "A private space to talk through what is on your mind.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Before you continue:")
	fmt.Fprintln(w, "  - This is not therapy and not a substitute for professional care.")
	fmt.Fprintln(w, "  - Conversations are sent to an AI model to generate replies.")
	fmt.Fprintln(w, "  - Journal entries you save are stored on this vault's server.")
	fmt.Fprintln(w, "  - In an emergency, contact local emergency services.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Type /agree to enter the vault.")
}

func renderChat(w io.Writer, st session.State, draft string) {
	p := st.ActivePersona()
	header := fmt.Sprintf("=== %s ===", p.Name)
	if st.LifetimeUnlocked {
		header += " ♛"
	}
	fmt.Fprintln(w, header)

	for i, m := range st.Transcript {
		who := "AI "
		if m.Role == chat.RoleUser {
			who = "You"
		}
		line := fmt.Sprintf("[%d] %s %s  %s", i+1, m.Timestamp.Format(timeLayout), who, m.Text)
		if m.Role == chat.RoleUser {
			if m.Saved {
				line += "  ✓ saved to vault"
			} else {
				line += fmt.Sprintf("  (/save %d)", i+1)
			}
		}
		fmt.Fprintln(w, line)
	}

	if st.Busy {
		fmt.Fprintln(w, "... thinking")
	}
	if draft != "" {
		fmt.Fprintf(w, "draft: %s\n", draft)
	}

	var others []string
	for _, p := range st.Personas {
		if p.Unlocked && p.ID != st.ActivePersonaID {
			others = append(others, p.ID)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(w, "switch with /persona <id>: %s\n", strings.Join(others, ", "))
	}
	if !st.LifetimeUnlocked {
		fmt.Fprintln(w, "tip: /unlock enables lifetime memory")
	}
}

func renderSettings(w io.Writer, st session.State) {
	fmt.Fprintln(w, "=== Settings ===")
	if st.LifetimeUnlocked {
		fmt.Fprintln(w, "Lifetime Unlocked: long-term memory is active.")
	} else {
		fmt.Fprintln(w, "Lifetime Privacy Unlock  $49.99  (/unlock)")
	}
	if st.Health != nil && !st.Health.StripeConfigured {
		fmt.Fprintln(w, "note: payments are not configured on the server")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Personas:")
	for _, p := range st.Personas {
		marker := " "
		if p.ID == st.ActivePersonaID {
			marker = "*"
		}
		status := "unlocked (/persona " + p.ID + ")"
		if !p.Unlocked {
			status = fmt.Sprintf("%s (/buy %s)", p.PriceLabel(), p.ID)
		}
		tag := ""
		switch p.Tag {
		case domain.TagFeatured:
			tag = " [featured]"
		case domain.TagPopular:
			tag = " [popular]"
		}
		fmt.Fprintf(w, " %s %-16s %s%s  %s\n", marker, p.ID, p.Name, tag, status)
		fmt.Fprintf(w, "     %s\n", p.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Danger zone: /incinerate erases the journal and every unlock.")
	fmt.Fprintln(w, "/back returns to the chat.")
}

func renderJournal(w io.Writer, st session.State) {
	fmt.Fprintln(w, "=== The Offline Journal ===")
	if !st.LifetimeUnlocked && len(st.Journal) > freeJournalLimit {
		fmt.Fprintln(w, "Premium Feature: you've reached the limit for free journal entries.")
		fmt.Fprintln(w, "Unlock Lifetime Memory (/unlock) to store unlimited reflections and enable pattern detection.")
	}
	if len(st.Journal) == 0 {
		fmt.Fprintln(w, "Your journal is empty. Save chat messages with /save <n>.")
	}
	for _, e := range st.Journal {
		fmt.Fprintf(w, "- %s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Text)
		if s := e.SummaryText(); s != "" {
			fmt.Fprintf(w, "    AI pattern analysis: %s\n", s)
		}
	}
	fmt.Fprintln(w, "/back returns to the chat.")
}

func renderCrisis(w io.Writer) {
	fmt.Fprintln(w, "=== You are not alone ===")
	fmt.Fprintln(w, "It sounds like you are going through something really painful.")
	fmt.Fprintln(w, "Please reach out to someone right now:")
	for _, r := range safety.Resources {
		fmt.Fprintf(w, "  %s: %s\n", r.Name, r.Contact)
	}
	fmt.Fprintln(w, "If you are in immediate danger, call your local emergency number.")
	fmt.Fprintln(w, "Type /ok to return to the chat.")
}
