package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/vault/internal/billing"
	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// JournalStore is the entry store as the routes see it.
type JournalStore interface {
	Append(ctx context.Context, e domain.JournalEntry) error
	ListAll(ctx context.Context) ([]domain.JournalEntry, error)
	ClearAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// CheckoutGateway is implemented by *billing.Gateway.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (billing.CheckoutSession, error)
	Configured() bool
}

// ChatService is implemented by *chat.Service.
type ChatService interface {
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
	Configured() bool
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Journal  JournalStore
	Billing  CheckoutGateway
	Chat     ChatService
	Personas *catalog.Catalog

	AppURL    string // fallback checkout return origin
	StaticDir string // built SPA, empty = API only

	AllowedHosts   []string // Host headers allowed to reach /api
	AllowedCIDRS   []string // IPs allowed to reach /api and /readyz
	TrustProxy     bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CheckoutBurst  int      // token bucket size for checkout and chat
	CheckoutPerMin int      // refill rate per client IP
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
