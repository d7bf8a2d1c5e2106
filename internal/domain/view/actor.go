package view

import (
	"context"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/mutation"
	"github.com/JULEEP/admin-frontend/internal/domain/pagination"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
)

func (v *View) run() {
	defer close(v.done)
	for {
		select {
		case <-v.ctx.Done():
			v.shutdown()
			return
		case ev := <-v.events:
			ev()
			v.commit()
		}
	}
}

// shutdown discards state and releases waiters and subscribers.
func (v *View) shutdown() {
	v.st.gen++
	if v.st.genCancel != nil {
		v.st.genCancel()
	}
	v.st.items = nil
	v.st.pending = nil
	v.st.deleting = nil
	v.st.notices = nil
	v.st.inFlight = 0

	snap := v.build()
	snap.Unmounted = true
	v.snap.Store(&snap)
	v.releaseWaiters()

	v.subMu.Lock()
	v.closed = true
	for id, ch := range v.subs {
		deliver(ch, snap)
		close(ch)
		delete(v.subs, id)
	}
	v.subMu.Unlock()

	v.metrics.ViewUnmounted(v.desc.Name)
	v.logger.Debug("view unmounted")
}

// beginGeneration invalidates outstanding requests and issues a fresh list.
func (v *View) beginGeneration() {
	if v.st.genCancel != nil {
		v.st.genCancel()
	}
	v.st.gen++
	v.st.genCtx, v.st.genCancel = context.WithCancel(v.ctx)
	v.st.loaded = false
	v.st.loadFailed = false
	v.st.items = nil
	v.st.page = 1
	v.st.pending = nil
	v.st.deleting = nil
	v.st.notices = nil
	v.st.failures = nil
	v.st.inFlight = 0
	v.changed()

	gen, ctx := v.st.gen, v.st.genCtx
	v.st.inFlight++
	v.spawn(func() {
		items, err := v.client.List(ctx)
		v.post(gen, func() { v.onListed(items, err) }, nil)
	})
}

func (v *View) onListed(items []model.Entity, err error) {
	v.st.loaded = true
	if err != nil {
		v.logger.Error("failed to load collection", "error", err)
		v.st.loadFailed = true
		v.st.items = nil
	} else {
		v.st.items = items
	}
	v.clampPage()
	v.changed()
}

// dispatch sends m on its own goroutine. Mutations are bound to the view
// lifetime rather than the generation, so a reload does not abort them.
func (v *View) dispatch(m mutation.Mutation) {
	gen := v.st.gen
	v.st.inFlight++
	v.spawn(func() {
		rec, err := v.ctl.Dispatch(v.ctx, m)
		var late func()
		if m.Kind == mutation.KindDelete && err == nil {
			late = func() { v.applyLateDelete(m) }
		}
		v.post(gen, func() { v.onDispatched(m, rec, err) }, late)
	})
}

// applyLateDelete removes an entity whose delete was acknowledged after a reload.
func (v *View) applyLateDelete(m mutation.Mutation) {
	if !v.st.loaded {
		return
	}
	if items, ok := mutation.ApplyDelete(v.st.items, m); ok {
		v.st.items = items
		v.clampPage()
		v.changed()
	}
}

func (v *View) onDispatched(m mutation.Mutation, rec *mutation.Reconciliation, err error) {
	switch m.Kind {
	case mutation.KindToggleField:
		if rec != nil {
			v.reconcile(*rec)
		}
	case mutation.KindDelete:
		v.st.deleting = slices.DeleteFunc(v.st.deleting, func(id string) bool { return id == m.EntityID })
		v.onDeleted(m, err)
	}
	v.changed()
}

func (v *View) onDeleted(m mutation.Mutation, err error) {
	switch {
	case err == nil:
		if items, ok := mutation.ApplyDelete(v.st.items, m); ok {
			v.st.items = items
			v.clampPage()
		}
		if v.desc.AnnounceDeletes {
			v.raise(Notice{
				Kind:          NoticeSuccess,
				Message:       fmt.Sprintf("%s deleted successfully.", capitalize(v.singular())),
				CorrelationID: m.CorrelationID,
			})
		}
	case apperrors.IsNotFound(err):
		v.raise(Notice{
			Kind:          NoticeError,
			Message:       fmt.Sprintf("The %s no longer exists on the server. Reload the list to see the current data.", v.singular()),
			CorrelationID: m.CorrelationID,
		})
	default:
		v.raise(Notice{
			Kind:          NoticeError,
			Message:       fmt.Sprintf("An error occurred while deleting the %s. Please try again.", v.singular()),
			CorrelationID: m.CorrelationID,
		})
	}
}

func (v *View) reconcile(rec mutation.Reconciliation) {
	failure := ToggleFailure{
		CorrelationID: rec.Mutation.CorrelationID,
		EntityID:      rec.Mutation.EntityID,
		Field:         rec.Mutation.Field,
		Previous:      rec.Previous,
		Error:         rec.Err.Error(),
		At:            v.now(),
	}
	if v.rollback {
		if items, ok := mutation.Rollback(v.st.items, rec); ok {
			v.st.items = items
			failure.RolledBack = true
			v.logger.Info("toggle rolled back",
				"correlation_id", rec.Mutation.CorrelationID,
				"entity_id", rec.Mutation.EntityID,
			)
		}
	}
	v.st.failures = append(v.st.failures, failure)
	if len(v.st.failures) > maxToggleFailures {
		v.st.failures = v.st.failures[len(v.st.failures)-maxToggleFailures:]
	}
}

func (v *View) raise(n Notice) {
	v.st.notices = append(v.st.notices, n)
}

func (v *View) blocked() bool {
	return v.st.pending != nil || len(v.st.notices) > 0
}

func (v *View) clampPage() {
	v.st.page = pagination.Clamp(v.st.page, pagination.PageCount(len(v.st.items), v.pageSize))
}

func (v *View) singular() string {
	if v.desc.Singular != "" {
		return v.desc.Singular
	}
	return "item"
}

// spawn runs fn as a tracked request goroutine.
func (v *View) spawn(fn func()) {
	v.requests.Add(1)
	go func() {
		defer v.requests.Done()
		fn()
	}()
}

// post delivers a request result to the view goroutine. Results issued in an
// older generation are dropped; late runs instead when it is non-nil.
func (v *View) post(gen uint64, apply, late func()) {
	ev := func() {
		if gen != v.st.gen {
			v.metrics.StaleDiscarded(v.desc.Name)
			v.logger.Debug("dropped stale response", "generation", gen, "current", v.st.gen)
			if late != nil {
				late()
			}
			return
		}
		v.st.inFlight--
		apply()
		if v.st.inFlight == 0 {
			v.releaseWaiters()
		}
		v.changed()
	}
	select {
	case v.events <- ev:
	case <-v.done:
	}
}

func (v *View) releaseWaiters() {
	for _, w := range v.st.waiters {
		close(w)
	}
	v.st.waiters = nil
}

func (v *View) changed() { v.st.version++ }

// commit publishes a snapshot when the state changed since the last publish.
func (v *View) commit() {
	if cur := v.snap.Load(); cur != nil && cur.Version == v.st.version {
		return
	}
	v.publish()
}

func (v *View) publish() {
	snap := v.build()
	v.snap.Store(&snap)

	v.subMu.Lock()
	defer v.subMu.Unlock()
	for _, ch := range v.subs {
		deliver(ch, snap)
	}
}

func (v *View) build() Snapshot {
	page := pagination.Describe(len(v.st.items), v.st.page, v.pageSize)
	snap := Snapshot{
		Resource:    v.desc.Name,
		Generation:  v.st.gen,
		Version:     v.st.version,
		Phase:       v.phase(),
		Page:        page,
		PageNumbers: pagination.PageNumbers(page.TotalPages),
		Rows:        pagination.Paginate(v.st.items, page.Index, v.pageSize),
		Deleting:    slices.Clone(v.st.deleting),
		InFlight:    v.st.inFlight,
		LoadFailed:  v.st.loadFailed,
	}
	if v.st.pending != nil {
		snap.PendingDelete = v.st.pending.EntityID
	}
	if len(v.st.notices) > 0 {
		n := v.st.notices[0]
		snap.Notice = &n
	}
	if len(v.st.failures) > 0 {
		snap.FailedToggles = slices.Clone(v.st.failures)
	}
	return snap
}

func (v *View) phase() Phase {
	switch {
	case !v.st.loaded:
		return PhaseLoading
	case v.st.pending != nil:
		return PhasePendingConfirmation
	case len(v.st.items) == 0 && !v.st.loadFailed:
		return PhaseEmpty
	default:
		return PhaseReady
	}
}

// deliver replaces any unread snapshot in ch with snap.
func deliver(ch chan Snapshot, snap Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
