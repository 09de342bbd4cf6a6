package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// MaxConns caps concurrent accepted connections (0 disables the cap).
	MaxConns int `env:"HTTP_MAX_CONNS" envDefault:"256"`

	// CheckUserRate limits requests per second to the internal check-user
	// endpoint; CheckUserBurst is the burst allowance.
	CheckUserRate  float64 `env:"HTTP_CHECK_USER_RATE"  envDefault:"20"`
	CheckUserBurst int     `env:"HTTP_CHECK_USER_BURST" envDefault:"40"`

	// ShutdownTimeout bounds graceful shutdown on termination.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.MaxConns < 0 {
		h.MaxConns = 0
	}
	if h.CheckUserRate <= 0 {
		h.CheckUserRate = 20
	}
	if h.CheckUserBurst < 1 {
		h.CheckUserBurst = int(h.CheckUserRate)
		if h.CheckUserBurst < 1 {
			h.CheckUserBurst = 1
		}
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}
