// Package reaper provides adapters for running the idle view reaper.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JULEEP/admin-frontend/config"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/service"
)

// Runner provides a simple adapter to run the reaper loop.
// It constructs the reaper service and runs the sweep loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Views  service.IdleViewReaper
	Config config.ViewConfig
	Logger *slog.Logger

	// Optional: session store without native expiry
	Sessions service.SessionPruner
	Metrics  *metrics.Metrics
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	reaper, err := service.NewReaperService(service.ReaperServiceOptions{
		Views:    opts.Views,
		Sessions: opts.Sessions,
		Config: service.ReaperConfig{
			Interval: opts.Config.ReapInterval,
			IdleTTL:  opts.Config.IdleTTL,
		},
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{
		reaper: reaper,
		logger: opts.Logger,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Views == nil {
		return errors.New("view registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}
