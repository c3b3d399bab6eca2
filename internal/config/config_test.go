package config

import (
	"os"
	"testing"
	"time"
)

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TEST_INT_OK", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	if got := getenvInt("TEST_INT_OK", 1); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getenvInt() with invalid value = %d, want default 7", got)
	}
	if got := getenvInt("TEST_INT_UNSET", 3); got != 3 {
		t.Errorf("getenvInt() unset = %d, want default 3", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , 'b',\"c\" ,, ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"VAULT_LISTEN_PORT", "VAULT_DB_PATH", "STRIPE_SECRET_KEY", "GEMINI_API_KEY",
		"VAULT_ALLOWED_CIDRS", "VAULT_TRUST_PROXY", "VAULT_LOG_LEVEL",
		"VAULT_MAINTENANCE_INTERVAL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.ListenPort != ":3000" {
		t.Errorf("ListenPort = %q, want :3000", cfg.ListenPort)
	}
	if cfg.DBPath != "journal.db" {
		t.Errorf("DBPath = %q, want journal.db", cfg.DBPath)
	}
	if cfg.StripeSecretKey != "" || cfg.ChatAPIKey != "" {
		t.Error("credentials should be empty when unset")
	}
	if cfg.AllowedCIDRS != nil {
		t.Errorf("AllowedCIDRS = %v, want nil", cfg.AllowedCIDRS)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.MaintenanceInterval != 24*time.Hour {
		t.Errorf("MaintenanceInterval = %v, want 24h", cfg.MaintenanceInterval)
	}
}

func TestLoadReadsCredentialsWithoutFailing(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("VAULT_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.10")
	t.Setenv("VAULT_LOG_LEVEL", "error")

	cfg := Load()
	if cfg.StripeSecretKey != "sk_test_123" {
		t.Errorf("StripeSecretKey = %q", cfg.StripeSecretKey)
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
	}

	red := cfg.Redacted()
	if red.StripeSecretKey == "sk_test_123" || red.ChatAPIKey == "g-key" {
		t.Error("Redacted() leaked a credential")
	}
	if cfg.StripeSecretKey != "sk_test_123" {
		t.Error("Redacted() mutated the original")
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("VAULTCTL_SERVER_URL", "http://vault.local:3000/")
	t.Setenv("VAULTCTL_EMAIL", "me@example.com")

	c := LoadClient()
	if c.ServerURL != "http://vault.local:3000" {
		t.Errorf("ServerURL = %q, trailing slash should be trimmed", c.ServerURL)
	}
	if c.Email != "me@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", c.LogLevel)
	}
}
