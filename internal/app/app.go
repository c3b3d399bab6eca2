package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/vault/internal/billing"
	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/chat"
	"github.com/MrSnakeDoc/vault/internal/config"
	"github.com/MrSnakeDoc/vault/internal/httpserver"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/scheduler"
	"github.com/MrSnakeDoc/vault/internal/store/sqlite"
	"github.com/MrSnakeDoc/vault/internal/utils"
	"github.com/MrSnakeDoc/vault/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  *sqlite.Store
	maint  *scheduler.Maintenance
}

// New wires the server. Missing provider keys are not fatal: the health
// route reports them and the affected routes fail per request.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	personas, err := catalog.Load(cfg.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}
	loggerClient.Info("persona catalog loaded", logger.Int("personas", len(personas.All())))

	store, err := sqlite.Open(ctx, cfg.DBPath, sqlite.WithLogger(loggerClient))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	loggerClient.Info("journal database ready", logger.String("path", cfg.DBPath))

	gateway := billing.New(cfg.StripeSecretKey)
	if !gateway.Configured() {
		loggerClient.Warn("STRIPE_SECRET_KEY is not set, checkout will fail")
	}

	chatSvc, err := chat.New(ctx, chat.Config{
		APIKey:  cfg.ChatAPIKey,
		BaseURL: cfg.ChatBaseURL,
		Model:   cfg.ChatModel,
	}, personas)
	if err != nil {
		utils.LogClose(loggerClient, "journal database", store)
		return nil, fmt.Errorf("failed to init chat model: %w", err)
	}
	if !chatSvc.Configured() {
		loggerClient.Warn("GEMINI_API_KEY is not set, chat will fail")
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		TimeNow:        time.Now,
		Journal:        store,
		Billing:        gateway,
		Chat:           chatSvc,
		Personas:       personas,
		AppURL:         cfg.AppURL,
		StaticDir:      cfg.StaticDir,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CheckoutBurst:  cfg.CheckoutBurst,
		CheckoutPerMin: cfg.CheckoutPerMin,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		store:  store,
		maint:  scheduler.NewMaintenance(store, loggerClient, cfg.MaintenanceInterval),
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Vault %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.maint.Start(ctx)
	defer a.maint.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.maint.Stop()
		utils.LogClose(a.logger, "journal database", a.store)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// In-flight requests are done; the database can go.
	a.maint.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close journal database: %v", err)
	} else {
		a.logger.Info("✅ Journal database closed cleanly")
	}

	a.logger.Info("✅ Vault stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
