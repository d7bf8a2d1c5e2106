// Package view implements the paginated resource view: a single-goroutine
// state machine that owns one resource collection for its mounted lifetime.
//
// All state transitions run on the view goroutine, one event at a time.
// Remote calls run on their own goroutines and post their results back as
// events tagged with the generation they were issued in; results from an
// older generation are dropped. Two toggles on the same entity race at the
// server and the last request to complete wins there, which may differ from
// the last value applied locally.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/mutation"
	"github.com/JULEEP/admin-frontend/internal/domain/pagination"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

var (
	// ErrUnmounted is returned by every operation after Unmount.
	ErrUnmounted = errors.New("view unmounted")
	// ErrBusy is returned when a confirmation or notice must be answered first,
	// or when the collection has not loaded yet.
	ErrBusy = errors.New("view is waiting for the operator")
	// ErrNotToggleable is returned by Toggle when the resource has no toggle field.
	ErrNotToggleable = errors.New("resource has no toggle field")
	// ErrNotDeletable is returned by RequestDelete when the resource has no delete endpoint.
	ErrNotDeletable = errors.New("resource does not support delete")
	// ErrNothingPending is returned by ConfirmDelete and CancelDelete outside PhasePendingConfirmation.
	ErrNothingPending = errors.New("no delete awaiting confirmation")
)

const maxToggleFailures = 10

// Options groups dependencies for Mount.
type Options struct {
	Descriptor model.ResourceDescriptor // Required: resource being viewed
	Client     ports.ResourceClient     // Required: upstream client for the resource
	PageSize   int                      // Optional: rows per page (defaults to pagination.DefaultPageSize)
	// RollbackOnToggleFailure reverts a rejected toggle when the entity still holds the optimistic value.
	RollbackOnToggleFailure bool
	Logger                  *slog.Logger     // Optional: structured logger
	Metrics                 *metrics.Metrics // Optional: Prometheus instruments
	Now                     func() time.Time // Optional: clock
	NewID                   func() string    // Optional: correlation id source
}

// View is a mounted resource view. Methods are safe for concurrent use.
type View struct {
	desc     model.ResourceDescriptor
	client   ports.ResourceClient
	ctl      *mutation.Controller
	pageSize int
	rollback bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	events   chan func()
	done     chan struct{}
	requests sync.WaitGroup

	snap       atomic.Pointer[Snapshot]
	lastActive atomic.Int64

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
	closed bool

	// Owned by the view goroutine.
	st state
}

type state struct {
	gen        uint64
	genCtx     context.Context
	genCancel  context.CancelFunc
	version    uint64
	loaded     bool
	loadFailed bool
	items      []model.Entity
	page       int
	pending    *mutation.Mutation
	deleting   []string
	notices    []Notice
	inFlight   int
	failures   []ToggleFailure
	waiters    []chan struct{}
}

// Mount starts a view and issues the initial list request.
// The view lives until Unmount; it does not inherit request-scoped contexts.
func Mount(opts Options) (*View, error) {
	if err := opts.Descriptor.Validate(); err != nil {
		return nil, err
	}
	if opts.Client == nil {
		return nil, errors.New("resource client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "resource_view", "resource", opts.Descriptor.Name)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	ctl, err := mutation.NewController(mutation.Options{
		Resource: opts.Descriptor.Name,
		Client:   opts.Client,
		Logger:   logger,
		Metrics:  opts.Metrics,
		Now:      now,
		NewID:    opts.NewID,
	})
	if err != nil {
		return nil, fmt.Errorf("mutation controller: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		desc:     opts.Descriptor,
		client:   opts.Client,
		ctl:      ctl,
		pageSize: pageSize,
		rollback: opts.RollbackOnToggleFailure,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan func()),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Snapshot),
	}
	v.touch()

	// The first generation is set up before the goroutine starts so the
	// initial snapshot is already Loading.
	v.beginGeneration()
	v.publish()
	v.metrics.ViewMounted(v.desc.Name)

	go v.run()
	return v, nil
}

// Descriptor returns the resource descriptor the view was mounted with.
func (v *View) Descriptor() model.ResourceDescriptor { return v.desc }

// Snapshot returns the latest published state.
func (v *View) Snapshot() Snapshot { return *v.snap.Load() }

// Done is closed once the view goroutine has stopped.
func (v *View) Done() <-chan struct{} { return v.done }

// LastActive returns the time of the last operator command.
func (v *View) LastActive() time.Time { return time.Unix(0, v.lastActive.Load()) }

func (v *View) touch() { v.lastActive.Store(v.now().UnixNano()) }

// ChangePage moves to the requested page. Out-of-range requests are ignored.
func (v *View) ChangePage(ctx context.Context, requested int) (Snapshot, error) {
	return v.command(ctx, func() error {
		if !v.st.loaded || v.blocked() {
			return nil
		}
		count := pagination.PageCount(len(v.st.items), v.pageSize)
		next := pagination.ChangePage(v.st.page, requested, count)
		if next != v.st.page {
			v.st.page = next
			v.changed()
		}
		return nil
	})
}

// Toggle flips the descriptor's toggle field on entity id. The change is applied
// locally before the request is sent and is kept if the request fails.
func (v *View) Toggle(ctx context.Context, id string) (Snapshot, error) {
	if !v.desc.CanToggle() {
		return v.Snapshot(), ErrNotToggleable
	}
	return v.command(ctx, func() error {
		if !v.st.loaded || v.blocked() {
			return ErrBusy
		}
		items, m, err := v.ctl.Toggle(v.st.items, id, v.desc.ToggleField)
		if err != nil {
			return err
		}
		v.st.items = items
		v.changed()
		v.dispatch(m)
		return nil
	})
}

// RequestDelete asks for confirmation before deleting entity id.
func (v *View) RequestDelete(ctx context.Context, id string) (Snapshot, error) {
	if !v.desc.CanDelete() {
		return v.Snapshot(), ErrNotDeletable
	}
	return v.command(ctx, func() error {
		if !v.st.loaded || v.blocked() {
			return ErrBusy
		}
		m, err := v.ctl.RequestDelete(v.st.items, id)
		if err != nil {
			return err
		}
		v.st.pending = &m
		v.changed()
		return nil
	})
}

// ConfirmDelete sends the pending delete. The entity is removed only once the
// server acknowledges it.
func (v *View) ConfirmDelete(ctx context.Context) (Snapshot, error) {
	return v.command(ctx, func() error {
		if v.st.pending == nil {
			return ErrNothingPending
		}
		m := *v.st.pending
		v.st.pending = nil
		v.st.deleting = append(v.st.deleting, m.EntityID)
		v.changed()
		v.dispatch(m)
		return nil
	})
}

// CancelDelete abandons the pending delete.
func (v *View) CancelDelete(ctx context.Context) (Snapshot, error) {
	return v.command(ctx, func() error {
		if v.st.pending == nil {
			return ErrNothingPending
		}
		v.st.pending = nil
		v.changed()
		return nil
	})
}

// AcknowledgeNotice dismisses the current notice. It is a no-op without one.
func (v *View) AcknowledgeNotice(ctx context.Context) (Snapshot, error) {
	return v.command(ctx, func() error {
		if len(v.st.notices) == 0 {
			return nil
		}
		v.st.notices = v.st.notices[1:]
		v.changed()
		return nil
	})
}

// Reload discards local state and fetches the collection again under a new generation.
// Responses to requests issued before the reload are dropped, except successful
// delete acknowledgments, which still remove their entity from the reloaded collection.
func (v *View) Reload(ctx context.Context) (Snapshot, error) {
	return v.command(ctx, func() error {
		v.beginGeneration()
		return nil
	})
}

// WaitIdle blocks until no request of the current generation is in flight.
func (v *View) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	if _, err := v.command(ctx, func() error {
		if v.st.inFlight == 0 {
			close(ch)
			return nil
		}
		v.st.waiters = append(v.st.waiters, ch)
		return nil
	}); err != nil {
		return err
	}
	select {
	case <-ch:
		if v.Snapshot().Unmounted {
			return ErrUnmounted
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel receiving the latest snapshot after every change.
// Slow receivers only see the most recent snapshot. The channel is closed on
// Unmount or when the returned cancel function is called.
func (v *View) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	v.subMu.Lock()
	defer v.subMu.Unlock()
	if v.closed {
		ch <- *v.snap.Load()
		close(ch)
		return ch, func() {}
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- *v.snap.Load()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.subMu.Lock()
			defer v.subMu.Unlock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
		})
	}
}

// Unmount stops the view, cancels its in-flight requests and discards its state.
// It is safe to call more than once and waits for the view's goroutines to exit.
func (v *View) Unmount() {
	v.cancel()
	<-v.done
	v.requests.Wait()
}

// command runs fn on the view goroutine and returns the resulting snapshot.
func (v *View) command(ctx context.Context, fn func() error) (Snapshot, error) {
	v.touch()
	reply := make(chan error, 1)
	ev := func() {
		err := fn()
		v.commit()
		reply <- err
	}

	select {
	case v.events <- ev:
	case <-v.done:
		return v.Snapshot(), ErrUnmounted
	case <-ctx.Done():
		return v.Snapshot(), ctx.Err()
	}

	select {
	case err := <-reply:
		return v.Snapshot(), err
	case <-v.done:
		return v.Snapshot(), ErrUnmounted
	}
}
