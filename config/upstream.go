package config

import (
	"strings"
	"time"
)

// UpstreamConfig configures the admin REST API the console manages.
type UpstreamConfig struct {
	// BaseURL is the scheme and host of the admin API (e.g. "https://admin.example.com").
	BaseURL string `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds every upstream request. There are no retries.
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`

	// APIToken is the bearer token used when a session carries none.
	APIToken string `env:"UPSTREAM_API_TOKEN"`

	// UserAgent is sent with every upstream request.
	UserAgent string `env:"UPSTREAM_USER_AGENT" envDefault:"backoffice-console"`
}

// Sanitize trims values and restores the default timeout.
func (u *UpstreamConfig) Sanitize() {
	u.BaseURL = strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
	u.APIToken = strings.TrimSpace(u.APIToken)
	if u.Timeout <= 0 {
		u.Timeout = 30 * time.Second
	}
}
