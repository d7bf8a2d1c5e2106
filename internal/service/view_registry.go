package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

// ViewConfig holds the per-view settings applied to every mount.
type ViewConfig struct {
	PageSize                int
	RollbackOnToggleFailure bool
}

// ViewRegistryOptions groups dependencies for ViewRegistry.
type ViewRegistryOptions struct {
	Catalog *model.ResourceCatalog      // Required: resources that can be mounted
	Clients ports.ResourceClientFactory // Required: builds upstream clients per session token
	Config  ViewConfig                  // Optional: view settings
	Logger  *slog.Logger                // Optional: structured logger
	Metrics *metrics.Metrics            // Optional: Prometheus instruments
	Now     func() time.Time            // Optional: clock shared with mounted views
}

// ViewRegistry owns the mounted view of each console session. A session has at
// most one mounted view; navigating to a resource always mounts a fresh one.
type ViewRegistry struct {
	catalog *model.ResourceCatalog
	clients ports.ResourceClientFactory
	config  ViewConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.Mutex
	views  map[string]*view.View
	closed bool
}

// ErrRegistryClosed is returned by Navigate after Close.
var ErrRegistryClosed = errors.New("view registry closed")

// NewViewRegistry constructs a ViewRegistry.
func NewViewRegistry(opts ViewRegistryOptions) (*ViewRegistry, error) {
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
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ViewRegistry{
		catalog: opts.Catalog,
		clients: opts.Clients,
		config:  opts.Config,
		logger:  logger.With("component", "view_registry"),
		metrics: opts.Metrics,
		now:     now,
		views:   make(map[string]*view.View),
	}, nil
}

// Catalog returns the resources the registry can mount.
func (r *ViewRegistry) Catalog() *model.ResourceCatalog { return r.catalog }

// Navigate mounts a fresh view of resource for sess and unmounts whatever the
// session had mounted before.
func (r *ViewRegistry) Navigate(sess model.Session, resource string) (*view.View, error) {
	desc, ok := r.catalog.Get(resource)
	if !ok {
		return nil, apperrors.NotFoundf("unknown resource %q", resource)
	}
	client, err := r.clients.ClientFor(desc, sess.APIToken)
	if err != nil {
		return nil, fmt.Errorf("client for %s: %w", resource, err)
	}
	v, err := view.Mount(view.Options{
		Descriptor:              desc,
		Client:                  client,
		PageSize:                r.config.PageSize,
		RollbackOnToggleFailure: r.config.RollbackOnToggleFailure,
		Logger:                  r.logger.With("session", shortID(sess.ID)),
		Metrics:                 r.metrics,
		Now:                     r.now,
	})
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", resource, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		v.Unmount()
		return nil, ErrRegistryClosed
	}
	prev := r.views[sess.ID]
	r.views[sess.ID] = v
	r.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	r.logger.Debug("view mounted", "session", shortID(sess.ID), "resource", resource)
	return v, nil
}

// Fetch loads one entity of resource with the session's token. It does not
// touch the session's mounted view.
func (r *ViewRegistry) Fetch(ctx context.Context, sess model.Session, resource, id string) (model.ResourceDescriptor, model.Entity, error) {
	desc, ok := r.catalog.Get(resource)
	if !ok {
		return model.ResourceDescriptor{}, model.Entity{}, apperrors.NotFoundf("unknown resource %q", resource)
	}
	if !desc.HasDetail() {
		return desc, model.Entity{}, apperrors.NotFoundf("%s has no detail page", resource)
	}
	client, err := r.clients.ClientFor(desc, sess.APIToken)
	if err != nil {
		return desc, model.Entity{}, fmt.Errorf("client for %s: %w", resource, err)
	}
	e, err := client.Get(ctx, id)
	if err != nil {
		return desc, model.Entity{}, err
	}
	return desc, e, nil
}

// Current returns the session's mounted view when it shows resource.
func (r *ViewRegistry) Current(sessionID, resource string) (*view.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[sessionID]
	if !ok || v.Descriptor().Name != resource {
		return nil, false
	}
	return v, true
}

// Ensure returns the session's mounted view of resource, mounting one when the
// session shows a different resource or none.
func (r *ViewRegistry) Ensure(sess model.Session, resource string) (*view.View, error) {
	if v, ok := r.Current(sess.ID, resource); ok {
		return v, nil
	}
	return r.Navigate(sess, resource)
}

// Release unmounts the session's view, if any.
func (r *ViewRegistry) Release(sessionID string) {
	r.mu.Lock()
	v := r.views[sessionID]
	delete(r.views, sessionID)
	r.mu.Unlock()
	if v != nil {
		v.Unmount()
	}
}

// ReapIdle unmounts views whose last operator command is older than idleTTL
// and returns how many were unmounted.
func (r *ViewRegistry) ReapIdle(ctx context.Context, idleTTL time.Duration) int {
	cutoff := r.now().Add(-idleTTL)

	r.mu.Lock()
	var idle []*view.View
	for id, v := range r.views {
		if v.LastActive().Before(cutoff) {
			idle = append(idle, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range idle {
		v.Unmount()
	}
	if len(idle) > 0 {
		r.metrics.ViewsReaped(len(idle))
		r.logger.InfoContext(ctx, "reaped idle views", "count", len(idle), "idle_ttl", idleTTL)
	}
	return len(idle)
}

// MountedView describes one mounted view for diagnostics.
type MountedView struct {
	Session    string    `json:"session"`
	Resource   string    `json:"resource"`
	LastActive time.Time `json:"last_active"`
}

// Mounted lists mounted views ordered by session.
func (r *ViewRegistry) Mounted() []MountedView {
	r.mu.Lock()
	out := make([]MountedView, 0, len(r.views))
	for id, v := range r.views {
		out = append(out, MountedView{
			Session:    shortID(id),
			Resource:   v.Descriptor().Name,
			LastActive: v.LastActive(),
		})
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out
}

// Len returns the number of mounted views.
func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close unmounts every view. Navigate fails afterwards.
func (r *ViewRegistry) Close() {
	r.mu.Lock()
	r.closed = true
	views := r.views
	r.views = make(map[string]*view.View)
	r.mu.Unlock()

	for _, v := range views {
		v.Unmount()
	}
}

// shortID keeps session ids out of logs in full.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
