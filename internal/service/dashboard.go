package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

// RecentOrdersLimit is the number of orders shown on the dashboard.
const RecentOrdersLimit = 5

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Catalog *model.ResourceCatalog      // Required: resources to count
	Clients ports.ResourceClientFactory // Required: builds upstream clients
	Logger  *slog.Logger                // Optional: structured logger
}

// DashboardService builds the console landing page.
type DashboardService struct {
	catalog *model.ResourceCatalog
	clients ports.ResourceClientFactory
	logger  *slog.Logger
	now     func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) (*DashboardService, error) {
	if opts.Catalog == nil {
		return nil, errors.New("resource catalog is required")
	}
	if opts.Clients == nil {
		return nil, errors.New("resource client factory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		catalog: opts.Catalog,
		clients: opts.Clients,
		logger:  logger.With("component", "dashboard_service"),
		now:     time.Now,
	}, nil
}

// Summary lists every resource concurrently. A failing resource is reported
// in its count and does not cancel the others; only the caller's cancellation
// stops the fan-out, and the summary then carries whatever finished.
func (s *DashboardService) Summary(ctx context.Context, apiToken string) model.DashboardSummary {
	descs := s.catalog.All()
	counts := make([]model.ResourceCount, len(descs))
	var orders []model.Entity
	var ordersErr error

	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range descs {
		counts[i] = model.ResourceCount{Resource: desc.Name, Title: desc.Title}
		g.Go(func() error {
			items, err := s.list(gctx, desc, apiToken)
			if err != nil {
				counts[i].Error = err.Error()
			} else {
				counts[i].Count = len(items)
			}
			if desc.Name == model.ResourceOrders {
				orders, ordersErr = items, err
			}
			if err == nil {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.WarnContext(gctx, "dashboard fetch failed", "resource", desc.Name, "error", err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.DebugContext(ctx, "dashboard summary cut short", "error", err)
	}

	summary := model.DashboardSummary{
		Orders:       model.SummarizeOrders(orders, s.now()),
		Resources:    counts,
		RecentOrders: recent(orders, RecentOrdersLimit),
		GeneratedAt:  s.now(),
	}
	if ordersErr != nil {
		summary.OrdersError = ordersErr.Error()
	}
	return summary
}

func (s *DashboardService) list(ctx context.Context, desc model.ResourceDescriptor, apiToken string) ([]model.Entity, error) {
	client, err := s.clients.ClientFor(desc, apiToken)
	if err != nil {
		return nil, err
	}
	return client.List(ctx)
}

func recent(orders []model.Entity, limit int) []model.Entity {
	if len(orders) > limit {
		orders = orders[:limit]
	}
	out := make([]model.Entity, len(orders))
	copy(out, orders)
	return out
}
