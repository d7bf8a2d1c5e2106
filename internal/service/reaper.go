package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
)

// Reaper defaults.
const (
	DefaultReapInterval = time.Minute
	DefaultViewIdleTTL  = 15 * time.Minute
)

// IdleViewReaper unmounts idle views. ViewRegistry implements it.
type IdleViewReaper interface {
	ReapIdle(ctx context.Context, idleTTL time.Duration) int
}

// SessionPruner drops expired sessions from stores that do not expire keys themselves.
type SessionPruner interface {
	Prune() int
}

// ReaperConfig controls sweep cadence and idleness.
type ReaperConfig struct {
	Interval time.Duration
	IdleTTL  time.Duration
}

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Views    IdleViewReaper   // Required: registry whose idle views are unmounted
	Sessions SessionPruner    // Optional: session store to prune
	Config   ReaperConfig     // Optional: defaults to DefaultReapInterval / DefaultViewIdleTTL
	Logger   *slog.Logger     // Optional: structured logger
	Metrics  *metrics.Metrics // Optional: Prometheus instruments
}

// ReaperService releases views of operators who stopped interacting and
// prunes expired sessions.
type ReaperService struct {
	views    IdleViewReaper
	sessions SessionPruner
	config   ReaperConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Views == nil {
		return nil, errors.New("view registry is required")
	}

	cfg := opts.Config
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReapInterval
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultViewIdleTTL
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reaper_service")
	logger.Debug("ReaperService initialized",
		"interval", cfg.Interval,
		"idle_ttl", cfg.IdleTTL,
		"prune_sessions", opts.Sessions != nil,
	)

	return &ReaperService{
		views:    opts.Views,
		sessions: opts.Sessions,
		config:   cfg,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      time.Now,
	}, nil
}

// Run sweeps at the configured interval until ctx is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)

	// Spread sweeps of instances started together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logCleanupError(s.Sweep(ctx), "initial sweep")

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.logCleanupError(s.Sweep(ctx), "sweep")
		}
	}
}

// waitWithJitter sleeps up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// Sweep runs one reap pass and records its outcome.
func (s *ReaperService) Sweep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := s.now()

	reaped := s.views.ReapIdle(ctx, s.config.IdleTTL)

	pruned := 0
	if s.sessions != nil {
		pruned = s.sessions.Prune()
	}
	if pruned > 0 {
		s.logger.InfoContext(ctx, "pruned expired sessions", "count", pruned)
	}

	err := ctx.Err()
	s.metrics.ObserveReap(reaped+pruned, err, s.now())
	s.logger.DebugContext(ctx, "reaper sweep finished",
		"views", reaped,
		"sessions", pruned,
		"elapsed", s.now().Sub(start),
	)
	return err
}

func (s *ReaperService) logCleanupError(err error, label string) {
	if err == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
