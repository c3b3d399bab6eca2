package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, covers the model call

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath      string // SQLite file holding the journal (":memory:" for tests)
	StaticDir   string // built SPA to serve on non-API paths (empty = API only)
	PersonaFile string // optional YAML persona catalog (empty = built-in)

	MaintenanceInterval time.Duration // how often the journal database is optimized (0 = never)

	// Billing. The key may be empty: checkout then fails per call, not at boot.
	StripeSecretKey string
	AppURL          string // fallback return origin when a request has no Origin header

	// Chat model. Same rule: an empty key fails per call.
	ChatAPIKey  string
	ChatBaseURL string
	ChatModel   string

	// Checkout and chat rate limit (token bucket per client IP)
	CheckoutBurst  int
	CheckoutPerMin int

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict API access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// ClientConfig configures vaultctl.
type ClientConfig struct {
	ServerURL     string        // base URL of the vault server
	Email         string        // payer email sent with checkout requests
	DictationFile string        // text source for the voice capture session (empty = no voice)
	LogLevel      string        // vaultctl logs to stderr, quiet by default
	HTTPTimeout   time.Duration // 0 = transport default
}

// Load reads the server configuration from the environment. A .env file in
// the working directory is loaded first when present.
func Load() *Config {
	loadDotEnv()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VAULT_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("VAULT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("VAULT_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("VAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VAULT_PRETTY_LOG", true),

		// Storage and assets
		DBPath:      getenv("VAULT_DB_PATH", "journal.db"),
		StaticDir:   getenv("VAULT_STATIC_DIR", ""),
		PersonaFile: getenv("VAULT_PERSONA_FILE", ""),

		MaintenanceInterval: mustDuration("VAULT_MAINTENANCE_INTERVAL", 24*time.Hour),

		// Billing
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		AppURL:          getenv("APP_URL", ""),

		// Chat
		ChatAPIKey:  os.Getenv("GEMINI_API_KEY"),
		ChatBaseURL: getenv("VAULT_CHAT_BASE_URL", ""),
		ChatModel:   getenv("VAULT_CHAT_MODEL", ""),

		CheckoutBurst:  getenvInt("VAULT_CHECKOUT_BURST", 5),
		CheckoutPerMin: getenvInt("VAULT_CHECKOUT_PER_MIN", 10),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("VAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("VAULT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("VAULT_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// LoadClient reads the vaultctl configuration from the environment.
func LoadClient() *ClientConfig {
	loadDotEnv()

	return &ClientConfig{
		ServerURL:     strings.TrimRight(getenv("VAULTCTL_SERVER_URL", "http://localhost:3000"), "/"),
		Email:         getenv("VAULTCTL_EMAIL", ""),
		DictationFile: getenv("VAULTCTL_DICTATION_FILE", ""),
		LogLevel:      getenv("VAULTCTL_LOG_LEVEL", "warn"),
		HTTPTimeout:   mustDuration("VAULTCTL_HTTP_TIMEOUT", 0),
	}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.StripeSecretKey != "" {
		c.StripeSecretKey = "***REDACTED***"
	}
	if c.ChatAPIKey != "" {
		c.ChatAPIKey = "***REDACTED***"
	}
	return c
}

func loadDotEnv() {
	// A missing .env is the normal production case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to load .env: %v\n", err)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
