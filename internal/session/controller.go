// Package session holds the client's state: which view is showing, what is
// unlocked, the chat transcript and a cached copy of the journal. Every
// user intent goes through Controller, which talks to the server through
// the narrow interfaces below and never holds its lock across a call.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/safety"
)

var (
	ErrConsentRequired   = errors.New("session: consent is required to continue")
	ErrInvalidTransition = errors.New("session: invalid view transition")
	ErrNotConfirmed      = errors.New("session: incineration was not confirmed")
	ErrBusy              = errors.New("session: a message is already being sent")
	ErrNotInChat         = errors.New("session: messages can only be sent from the chat view")
	ErrNotSaveable       = errors.New("session: only unsaved user messages can be saved")
	ErrUnknownItem       = errors.New("session: unknown checkout item")
	ErrAlreadyUnlocked   = errors.New("session: already unlocked")
)

// Transcript texts.
const (
	ApologyText      = "I apologize, but I'm having trouble connecting securely right now. Please try again in a moment."
	greetingTemplate = "Hello. I am the Privacy Vault AI (%s mode). I'm here to provide a safe, private space for you to explore your thoughts and feelings. How are you feeling today?"
	switchTemplate   = "Switched to %s mode. How can I help you from this perspective?"
)

// JournalAPI is the remote entry store.
type JournalAPI interface {
	List(ctx context.Context) ([]domain.JournalEntry, error)
	Append(ctx context.Context, e domain.JournalEntry) error
	Clear(ctx context.Context) error
}

// BillingAPI starts a checkout and returns the payment page URL.
type BillingAPI interface {
	CreateCheckout(ctx context.Context, itemID, email string) (string, error)
}

// ChatAPI produces the next model turn.
type ChatAPI interface {
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
}

// HealthAPI reads the server's self report.
type HealthAPI interface {
	Health(ctx context.Context) (domain.Health, error)
}

// Message is one transcript line.
type Message struct {
	Role      string
	Text      string
	Timestamp time.Time
	Saved     bool
}

// SendResult tells the caller what a Send did.
type SendResult struct {
	Crisis bool   // overlay raised, nothing was sent
	Reply  string // model text, or the apology on failure
}

// Confirmation describes what ApplyPendingConfirmation found.
type Confirmation struct {
	Applied  bool   // an entitlement changed
	Canceled bool   // the user backed out of checkout
	ItemID   string // persona id or "lifetime"
	Message  string // user-facing notice, empty when nothing happened
}

// State is a point-in-time copy for rendering.
type State struct {
	View             View
	LifetimeUnlocked bool
	ActivePersonaID  string
	Personas         []domain.Persona // Unlocked reflects this session
	Transcript       []Message
	Journal          []domain.JournalEntry
	Crisis           bool
	Busy             bool
	Health           *domain.Health
}

// ActivePersona returns the active persona from the snapshot.
func (s State) ActivePersona() domain.Persona {
	for _, p := range s.Personas {
		if p.ID == s.ActivePersonaID {
			return p
		}
	}
	return domain.Persona{ID: s.ActivePersonaID, Name: s.ActivePersonaID}
}

// Config wires a Controller.
type Config struct {
	Personas *catalog.Catalog
	Journal  JournalAPI
	Billing  BillingAPI
	Chat     ChatAPI
	Health   HealthAPI // optional
	Logger   logger.Logger
	Now      func() time.Time // defaults to time.Now
	NewID    func() string    // defaults to uuid.NewString
}

type Controller struct {
	personas *catalog.Catalog
	journal  JournalAPI
	billing  BillingAPI
	chat     ChatAPI
	health   HealthAPI
	log      logger.Logger
	now      func() time.Time
	newID    func() string

	mu           sync.Mutex
	view         View
	ent          Entitlements
	transcript   []Message
	entries      []domain.JournalEntry
	crisis       bool
	busy         bool
	epoch        uint64 // bumped whenever the transcript is replaced
	lastHealth   *domain.Health
	appliedMarks map[string]struct{}
}

// New returns a controller on the onboarding view with default entitlements.
func New(cfg Config) *Controller {
	c := &Controller{
		personas:     cfg.Personas,
		journal:      cfg.Journal,
		billing:      cfg.Billing,
		chat:         cfg.Chat,
		health:       cfg.Health,
		log:          cfg.Logger,
		now:          cfg.Now,
		newID:        cfg.NewID,
		appliedMarks: make(map[string]struct{}),
	}
	if c.personas == nil {
		c.personas = catalog.Default()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	c.ent = NewEntitlements(c.personas.Free())
	c.resetTranscriptLocked(greetingTemplate)
	return c
}

// Load probes the server and fetches the journal. State is only replaced
// on success.
func (c *Controller) Load(ctx context.Context) error {
	var errs []error

	if c.health != nil {
		h, err := c.health.Health(ctx)
		if err != nil {
			c.log.Warn("health check failed", logger.Error(err))
			errs = append(errs, fmt.Errorf("health check: %w", err))
		} else {
			c.mu.Lock()
			c.lastHealth = &h
			c.mu.Unlock()
			c.log.Debug("server health",
				logger.String("status", h.Status),
				logger.Bool("stripe", h.StripeConfigured),
				logger.Bool("chat", h.ChatConfigured))
		}
	}

	entries, err := c.journal.List(ctx)
	if err != nil {
		c.log.Warn("failed to fetch journal", logger.Error(err))
		errs = append(errs, fmt.Errorf("fetch journal: %w", err))
	} else {
		c.mu.Lock()
		c.entries = entries
		c.mu.Unlock()
	}

	return errors.Join(errs...)
}

// AcceptConsent leaves onboarding. It is one-way.
func (c *Controller) AcceptConsent(agreed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewOnboarding {
		return ErrInvalidTransition
	}
	if !agreed {
		return ErrConsentRequired
	}
	c.view = ViewChat
	return nil
}

func (c *Controller) OpenSettings() error  { return c.move(ViewChat, ViewSettings) }
func (c *Controller) CloseSettings() error { return c.move(ViewSettings, ViewChat) }
func (c *Controller) OpenJournal() error   { return c.move(ViewChat, ViewJournal) }
func (c *Controller) CloseJournal() error  { return c.move(ViewJournal, ViewChat) }

func (c *Controller) move(from, to View) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != from {
		return ErrInvalidTransition
	}
	c.view = to
	return nil
}

// ApplyPendingConfirmation consumes a payment-return marker from u and
// returns u without the marker parameters. A marker is identified by its
// checkout session id and changes state at most once, so feeding the same
// URL again is a no-op while a later purchase of the same item applies.
func (c *Controller) ApplyPendingConfirmation(u *url.URL) (Confirmation, *url.URL) {
	if u == nil {
		return Confirmation{}, nil
	}
	q := u.Query()
	success := q.Get("success") == "true"
	canceled := q.Get("canceled") == "true"
	itemID := q.Get("personaId")
	sessionID := q.Get("session_id")

	cleaned := *u
	q.Del("success")
	q.Del("personaId")
	q.Del("canceled")
	q.Del("session_id")
	cleaned.RawQuery = q.Encode()

	if canceled && !success {
		return Confirmation{Canceled: true, ItemID: itemID}, &cleaned
	}
	if !success || itemID == "" {
		return Confirmation{}, &cleaned
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mark := "success:" + itemID + ":" + sessionID
	if _, done := c.appliedMarks[mark]; done {
		c.log.Debug("payment confirmation already applied", logger.String("item", itemID))
		return Confirmation{ItemID: itemID}, &cleaned
	}

	var conf Confirmation
	switch {
	case itemID == domain.LifetimeItemID:
		c.ent.unlockLifetime()
		conf = Confirmation{
			Applied: true,
			ItemID:  itemID,
			Message: "Lifetime Privacy Unlocked! Vector Search & Long-term Memory are now active.",
		}
	case c.personas.Has(itemID):
		c.ent.unlock(itemID)
		if c.ent.Select(itemID) {
			c.resetTranscriptLocked(switchTemplate)
		}
		conf = Confirmation{
			Applied: true,
			ItemID:  itemID,
			Message: fmt.Sprintf("Unlocked %s persona!", itemID),
		}
	default:
		c.log.Warn("ignoring confirmation for unknown item", logger.String("item", itemID))
		return Confirmation{ItemID: itemID}, &cleaned
	}

	c.appliedMarks[mark] = struct{}{}
	c.view = ViewChat
	c.log.Info("payment confirmation applied", logger.String("item", itemID))
	return conf, &cleaned
}

// Incinerate erases the remote journal and resets the session. When the
// remote call fails nothing local changes.
func (c *Controller) Incinerate(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.journal.Clear(ctx); err != nil {
		c.log.Error("failed to wipe remote vault data", logger.Error(err))
		return fmt.Errorf("failed to wipe remote vault data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.ent = NewEntitlements(c.personas.Free())
	c.appliedMarks = make(map[string]struct{})
	c.crisis = false
	c.view = ViewOnboarding
	c.resetTranscriptLocked(greetingTemplate)
	c.log.Info("vault incinerated")
	return nil
}

// SelectPersona activates an unlocked persona. Locked or unknown ids leave
// everything as it was and return false.
func (c *Controller) SelectPersona(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ent.Select(id) {
		return false
	}
	c.resetTranscriptLocked(switchTemplate)
	return true
}

// Send runs the safety filter and, when it passes, asks the chat service
// for the next turn. Empty text does nothing.
func (c *Controller) Send(ctx context.Context, text string) (SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return SendResult{}, nil
	}

	c.mu.Lock()
	if c.view != ViewChat {
		c.mu.Unlock()
		return SendResult{}, ErrNotInChat
	}
	if c.busy {
		c.mu.Unlock()
		return SendResult{}, ErrBusy
	}
	if safety.Detect(text) {
		c.crisis = true
		c.mu.Unlock()
		return SendResult{Crisis: true}, nil
	}

	c.transcript = append(c.transcript, Message{Role: chat.RoleUser, Text: text, Timestamp: c.now()})
	req := chat.Request{
		PersonaID: c.ent.ActivePersonaID(),
		Memory:    c.ent.LifetimeUnlocked(),
		Messages:  turns(c.transcript),
	}
	epoch := c.epoch
	c.busy = true
	c.mu.Unlock()

	reply, err := c.chat.Reply(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.log.Error("chat request failed", logger.Error(err))
		if epoch == c.epoch {
			c.transcript = append(c.transcript, Message{Role: chat.RoleModel, Text: ApologyText, Timestamp: c.now()})
		}
		return SendResult{Reply: ApologyText}, err
	}
	if reply.Crisis {
		c.crisis = true
		return SendResult{Crisis: true}, nil
	}
	if epoch != c.epoch {
		// The transcript was replaced while waiting; this answer belongs to the old one.
		return SendResult{Reply: reply.Text}, nil
	}
	c.transcript = append(c.transcript, Message{Role: chat.RoleModel, Text: reply.Text, Timestamp: c.now()})
	return SendResult{Reply: reply.Text}, nil
}

// DismissCrisis hides the crisis overlay.
func (c *Controller) DismissCrisis() {
	c.mu.Lock()
	c.crisis = false
	c.mu.Unlock()
}

// SaveEntry stores the user message at index in the journal. On failure
// the message stays unsaved so the intent can be retried.
func (c *Controller) SaveEntry(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.transcript) {
		c.mu.Unlock()
		return ErrNotSaveable
	}
	msg := c.transcript[index]
	if msg.Role != chat.RoleUser || msg.Saved {
		c.mu.Unlock()
		return ErrNotSaveable
	}
	summary := domain.SummaryPlaceholder
	entry := domain.JournalEntry{
		ID:        c.newID(),
		Text:      msg.Text,
		Timestamp: c.now().UTC(),
		Summary:   &summary,
	}
	epoch := c.epoch
	c.mu.Unlock()

	if err := c.journal.Append(ctx, entry); err != nil {
		c.log.Error("failed to save journal entry", logger.Error(err))
		return fmt.Errorf("failed to save entry to the vault: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch == c.epoch && index < len(c.transcript) {
		c.transcript[index].Saved = true
	}
	c.entries = append([]domain.JournalEntry{entry}, c.entries...)
	return nil
}

// Checkout starts a payment for a persona or the lifetime unlock and
// returns the page the user must visit.
func (c *Controller) Checkout(ctx context.Context, itemID, email string) (string, error) {
	c.mu.Lock()
	switch {
	case itemID == domain.LifetimeItemID:
		if c.ent.LifetimeUnlocked() {
			c.mu.Unlock()
			return "", ErrAlreadyUnlocked
		}
	case c.personas.Has(itemID):
		if c.ent.IsUnlocked(itemID) {
			c.mu.Unlock()
			return "", ErrAlreadyUnlocked
		}
	default:
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	c.mu.Unlock()

	u, err := c.billing.CreateCheckout(ctx, itemID, email)
	if err != nil {
		c.log.Error("checkout failed", logger.String("item", itemID), logger.Error(err))
		return "", fmt.Errorf("checkout error: %w", err)
	}
	return u, nil
}

// Snapshot copies the state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	personas := c.personas.All()
	for i := range personas {
		personas[i].Unlocked = c.ent.IsUnlocked(personas[i].ID)
	}

	var health *domain.Health
	if c.lastHealth != nil {
		h := *c.lastHealth
		health = &h
	}

	return State{
		View:             c.view,
		LifetimeUnlocked: c.ent.LifetimeUnlocked(),
		ActivePersonaID:  c.ent.ActivePersonaID(),
		Personas:         personas,
		Transcript:       append([]Message(nil), c.transcript...),
		Journal:          append([]domain.JournalEntry(nil), c.entries...),
		Crisis:           c.crisis,
		Busy:             c.busy,
		Health:           health,
	}
}

// Entitlements returns a copy of the current entitlements.
func (c *Controller) Entitlements() Entitlements {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ent.clone()
}

func (c *Controller) resetTranscriptLocked(template string) {
	name := c.ent.ActivePersonaID()
	if p, ok := c.personas.Get(name); ok {
		name = p.Name
	}
	c.transcript = []Message{{
		Role:      chat.RoleModel,
		Text:      fmt.Sprintf(template, name),
		Timestamp: c.now(),
	}}
	c.epoch++
}

func turns(msgs []Message) []chat.Turn {
	out := make([]chat.Turn, len(msgs))
	for i, m := range msgs {
		out[i] = chat.Turn{Role: m.Role, Text: m.Text}
	}
	return out
}
