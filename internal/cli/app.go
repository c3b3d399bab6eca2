package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/session"
	"github.com/MrSnakeDoc/vault/internal/voice"
)

// IncinerateWarning is asked before the journal is wiped.
const IncinerateWarning = "Are you sure? This will wipe the encryption key and all data will be lost forever."

// Controller is the slice of *session.Controller the terminal client drives.
type Controller interface {
	Snapshot() session.State
	AcceptConsent(agreed bool) error
	OpenSettings() error
	CloseSettings() error
	OpenJournal() error
	CloseJournal() error
	ApplyPendingConfirmation(u *url.URL) (session.Confirmation, *url.URL)
	Incinerate(ctx context.Context, confirmed bool) error
	SelectPersona(id string) bool
	Send(ctx context.Context, text string) (session.SendResult, error)
	DismissCrisis()
	SaveEntry(ctx context.Context, index int) error
	Checkout(ctx context.Context, itemID, email string) (string, error)
}

// App executes user intents against the controller and prints the result.
type App struct {
	ctrl    Controller
	email   string
	log     logger.Logger
	voice   *voice.Session // nil when no dictation source is configured
	draft   voice.Draft
	confirm func(prompt string) bool

	outMu sync.Mutex
	out   io.Writer
}

// Options configures an App.
type Options struct {
	Email   string
	Voice   *voice.Session
	Logger  logger.Logger
	Out     io.Writer
	Confirm func(prompt string) bool // asks a yes/no question; nil always answers no
}

func NewApp(ctrl Controller, opts Options) *App {
	a := &App{
		ctrl:    ctrl,
		email:   opts.Email,
		voice:   opts.Voice,
		log:     opts.Logger,
		out:     opts.Out,
		confirm: opts.Confirm,
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if a.out == nil {
		a.out = io.Discard
	}
	if a.confirm == nil {
		a.confirm = func(string) bool { return false }
	}
	return a
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *App) alert(format string, args ...any) {
	a.println("! " + fmt.Sprintf(format, args...))
}

func (a *App) state() session.State { return a.ctrl.Snapshot() }

// Show renders the current view.
func (a *App) Show(context.Context) error {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	Render(a.out, a.ctrl.Snapshot(), a.draft.Text())
	return nil
}

func (a *App) Agree(ctx context.Context) error {
	if err := a.ctrl.AcceptConsent(true); err != nil {
		a.alert("%v", err)
		return err
	}
	return a.Show(ctx)
}

func (a *App) Decline(context.Context) error {
	err := a.ctrl.AcceptConsent(false)
	if err != nil {
		a.alert("You need to acknowledge the notice before entering the vault.")
	}
	return err
}

// Say sends one chat message.
func (a *App) Say(ctx context.Context, text string) error {
	res, err := a.ctrl.Send(ctx, text)
	switch {
	case errors.Is(err, session.ErrBusy):
		a.alert("Still waiting for the previous reply.")
		return err
	case errors.Is(err, session.ErrNotInChat):
		a.alert("Open the chat first (type /back).")
		return err
	case res.Crisis:
		return a.Show(ctx)
	case err != nil:
		a.log.Debug("chat failed", logger.Error(err))
	}
	if res.Reply != "" {
		a.println("AI: " + res.Reply)
	}
	return err
}

// SendDraft sends what voice dictation composed.
func (a *App) SendDraft(ctx context.Context) error {
	text := a.draft.Text()
	if strings.TrimSpace(text) == "" {
		a.println("Nothing dictated yet.")
		return nil
	}
	if a.voice != nil {
		if a.voice.Listening() {
			a.voice.Stop()
		}
		a.draft.Discard(a.voice.Runs())
	} else {
		a.draft.Reset("")
	}
	return a.Say(ctx, text)
}

// Save stores transcript message n (1-based, as listed) in the journal.
func (a *App) Save(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		a.alert("Usage: /save <message number>")
		return err
	}
	if err := a.ctrl.SaveEntry(ctx, n-1); err != nil {
		if errors.Is(err, session.ErrNotSaveable) {
			a.alert("Message %d cannot be saved.", n)
		} else {
			a.alert("Failed to save entry to the vault backend.")
		}
		return err
	}
	a.println("✓ Saved to vault")
	return nil
}

func (a *App) OpenSettings(ctx context.Context) error { return a.move(ctx, a.ctrl.OpenSettings) }
func (a *App) OpenJournal(ctx context.Context) error  { return a.move(ctx, a.ctrl.OpenJournal) }

// Back returns to the chat from settings or the journal.
func (a *App) Back(ctx context.Context) error {
	switch a.ctrl.Snapshot().View {
	case session.ViewSettings:
		return a.move(ctx, a.ctrl.CloseSettings)
	case session.ViewJournal:
		return a.move(ctx, a.ctrl.CloseJournal)
	case session.ViewOnboarding, session.ViewChat:
		return a.Show(ctx)
	}
	return nil
}

func (a *App) move(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		a.alert("That screen is not reachable from here.")
		return err
	}
	return a.Show(ctx)
}

// Persona switches the active persona.
func (a *App) Persona(ctx context.Context, id string) error {
	if !a.ctrl.SelectPersona(id) {
		st := a.ctrl.Snapshot()
		if id == st.ActivePersonaID {
			a.println("Already in that mode.")
			return nil
		}
		a.alert("Persona %q is locked or unknown. Use /buy %s to unlock it.", id, id)
		return nil
	}
	return a.Show(ctx)
}

// Buy starts a checkout for a persona.
func (a *App) Buy(ctx context.Context, id string) error {
	return a.checkout(ctx, id)
}

// Unlock starts the lifetime checkout.
func (a *App) Unlock(ctx context.Context) error {
	return a.checkout(ctx, domain.LifetimeItemID)
}

func (a *App) checkout(ctx context.Context, item string) error {
	u, err := a.ctrl.Checkout(ctx, item, a.email)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyUnlocked) {
			a.println("Already unlocked.")
			return nil
		}
		a.alert("Checkout Error: %v. Please ensure STRIPE_SECRET_KEY is configured on the server.", err)
		return err
	}
	a.println("Complete the payment at:")
	a.println("  " + u)
	a.println("Then paste the page address you land on with /confirm <url>.")
	return nil
}

// Confirm applies a payment return address.
func (a *App) Confirm(ctx context.Context, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		a.alert("Usage: /confirm <return url>")
		if err == nil {
			err = errors.New("empty url")
		}
		return err
	}
	conf, _ := a.ctrl.ApplyPendingConfirmation(u)
	switch {
	case conf.Applied:
		a.println("★ " + conf.Message)
		return a.Show(ctx)
	case conf.Canceled:
		a.println("Checkout canceled.")
	default:
		a.println("Nothing to apply.")
	}
	return nil
}

// Incinerate wipes everything after asking.
func (a *App) Incinerate(ctx context.Context) error {
	confirmed := a.confirm(IncinerateWarning)
	if err := a.ctrl.Incinerate(ctx, confirmed); err != nil {
		if errors.Is(err, session.ErrNotConfirmed) {
			a.println("Incineration canceled.")
			return nil
		}
		a.alert("Failed to wipe remote vault data.")
		return err
	}
	a.println("🔥 Vault incinerated.")
	return a.Show(ctx)
}

func (a *App) DismissCrisis(ctx context.Context) error {
	a.ctrl.DismissCrisis()
	return a.Show(ctx)
}

// Mic toggles voice dictation.
func (a *App) Mic(ctx context.Context) error {
	if a.voice == nil {
		a.alert("Voice input is not configured (set VAULTCTL_DICTATION_FILE).")
		return nil
	}
	if a.voice.Listening() {
		a.voice.Stop()
		a.println("🎙 stopped. Draft: " + a.draft.Text())
		return nil
	}
	a.draft.Reset(a.draft.Text())
	if err := a.voice.Start(ctx); err != nil {
		a.alert("%v", err)
		return err
	}
	a.println("🎙 listening... (/mic to stop, /send to send the draft)")
	return nil
}

// PumpVoice copies dictation into the draft until ctx is done. Run it in
// its own goroutine.
func (a *App) PumpVoice(ctx context.Context) {
	if a.voice == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-a.voice.Fragments():
			text := a.draft.Apply(f)
			if f.Final && text != "" {
				a.println("🎙 " + text)
			}
		case msg := <-a.voice.Errors():
			a.alert("%s", msg)
		}
	}
}
