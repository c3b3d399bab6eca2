package domain

// Health is the server's self report, as served on /api/health.
type Health struct {
	Status           string  `json:"status"`
	StripeConfigured bool    `json:"stripeConfigured"`
	ChatConfigured   bool    `json:"chatConfigured"`
	Version          string  `json:"version,omitempty"`
	UptimeSeconds    float64 `json:"uptimeSeconds"`
}
