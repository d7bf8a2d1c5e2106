package config

import "time"

const (
	defaultPageSize      = 5
	maxPageSize          = 100
	defaultIdleTTL       = 15 * time.Minute
	defaultReapInterval  = time.Minute
	defaultSettleTimeout = 2 * time.Second
)

// ViewConfig controls mounted resource views.
type ViewConfig struct {
	// PageSize is the number of rows per page.
	PageSize int `env:"VIEW_PAGE_SIZE" envDefault:"5"`

	// RollbackOnToggleFailure reverts a rejected toggle when the entity still
	// holds the value the toggle set. Off by default: the optimistic value stays.
	RollbackOnToggleFailure bool `env:"VIEW_ROLLBACK_ON_TOGGLE_FAILURE" envDefault:"false"`

	// IdleTTL is how long a view may go without an operator command before the reaper unmounts it.
	IdleTTL time.Duration `env:"VIEW_IDLE_TTL" envDefault:"15m"`

	// ReapInterval is the reaper sweep interval.
	ReapInterval time.Duration `env:"VIEW_REAP_INTERVAL" envDefault:"1m"`

	// SettleTimeout is how long an HTTP handler waits for a freshly mounted
	// view to load before rendering it in the Loading phase.
	SettleTimeout time.Duration `env:"VIEW_SETTLE_TIMEOUT" envDefault:"2s"`
}

// Sanitize applies guardrails to view configuration values.
func (v *ViewConfig) Sanitize() {
	if v.PageSize <= 0 {
		v.PageSize = defaultPageSize
	}
	if v.PageSize > maxPageSize {
		v.PageSize = maxPageSize
	}
	if v.IdleTTL <= 0 {
		v.IdleTTL = defaultIdleTTL
	}
	if v.ReapInterval <= 0 {
		v.ReapInterval = defaultReapInterval
	}
	if v.SettleTimeout < 0 {
		v.SettleTimeout = defaultSettleTimeout
	}
}
