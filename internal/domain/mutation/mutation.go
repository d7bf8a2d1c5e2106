// Package mutation implements optimistic field toggles and confirmed deletes
// against a resource collection.
//
// Toggles are applied to the local collection before the remote request is
// sent. Deletes are applied only after the server acknowledges them. A failed
// toggle produces a Reconciliation holding the pre-mutation value; callers
// decide whether to apply it.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

// Kind identifies the mutation type.
type Kind string

const (
	KindToggleField Kind = "toggle-field"
	KindDelete      Kind = "delete"
)

// ErrEntityNotFound is returned when a mutation targets an id absent from the local collection.
var ErrEntityNotFound = errors.New("entity not in collection")

// Mutation is one issued change awaiting its remote outcome.
type Mutation struct {
	CorrelationID string
	Kind          Kind
	Resource      string
	EntityID      string
	Field         string
	Previous      any
	Value         any
	IssuedAt      time.Time
}

// Reconciliation records a toggle the server rejected.
// Previous is the value the entity held before the optimistic update.
type Reconciliation struct {
	Mutation Mutation
	Previous any
	Err      error
}

// Options groups dependencies for Controller.
type Options struct {
	Resource string               // Required: resource name used in logs and metrics
	Client   ports.ResourceClient // Required: upstream client
	Logger   *slog.Logger         // Optional: structured logger
	Metrics  *metrics.Metrics     // Optional: Prometheus instruments
	Now      func() time.Time     // Optional: clock (defaults to time.Now)
	NewID    func() string        // Optional: correlation id source (defaults to uuid)
}

// Controller issues toggle and delete mutations for one resource.
// It holds no collection state; callers own the collection and serialize access to it.
type Controller struct {
	resource string
	client   ports.ResourceClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// NewController constructs a Controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Client == nil {
		return nil, errors.New("resource client is required")
	}
	if opts.Resource == "" {
		return nil, errors.New("resource name is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Controller{
		resource: opts.Resource,
		client:   opts.Client,
		logger:   logger.With("component", "mutation", "resource", opts.Resource),
		metrics:  opts.Metrics,
		now:      now,
		newID:    newID,
	}, nil
}

// Toggle flips field on the entity with id and returns the updated collection
// and the mutation to dispatch. A missing field reads as false. The input slice
// is not modified.
func (c *Controller) Toggle(items []model.Entity, id, field string) ([]model.Entity, Mutation, error) {
	idx := model.IndexOf(items, id)
	if idx < 0 {
		return items, Mutation{}, fmt.Errorf("toggle %s %q: %w", c.resource, id, ErrEntityNotFound)
	}
	current := items[idx]
	previous, _ := current.Value(field)
	next := !current.Bool(field)

	updated, _ := model.ReplaceByID(items, current.With(field, next))
	m := Mutation{
		CorrelationID: c.newID(),
		Kind:          KindToggleField,
		Resource:      c.resource,
		EntityID:      id,
		Field:         field,
		Previous:      previous,
		Value:         next,
		IssuedAt:      c.now(),
	}
	return updated, m, nil
}

// RequestDelete prepares a delete mutation for id. Nothing is changed locally.
func (c *Controller) RequestDelete(items []model.Entity, id string) (Mutation, error) {
	if model.IndexOf(items, id) < 0 {
		return Mutation{}, fmt.Errorf("delete %s %q: %w", c.resource, id, ErrEntityNotFound)
	}
	return Mutation{
		CorrelationID: c.newID(),
		Kind:          KindDelete,
		Resource:      c.resource,
		EntityID:      id,
		IssuedAt:      c.now(),
	}, nil
}

// Dispatch sends m to the server. It blocks until the request completes and is
// meant to run off the caller's event loop. Toggle failures are logged and
// returned as a Reconciliation; delete failures are returned as err.
func (c *Controller) Dispatch(ctx context.Context, m Mutation) (*Reconciliation, error) {
	var err error
	switch m.Kind {
	case KindToggleField:
		err = c.client.PatchField(ctx, m.EntityID, m.Field, m.Value)
	case KindDelete:
		err = c.client.Delete(ctx, m.EntityID)
	default:
		return nil, apperrors.Internalf("unknown mutation kind %q", m.Kind)
	}

	if err != nil {
		if ctx.Err() != nil {
			c.observe(m, metrics.ResultNoop, nil)
			return nil, apperrors.FromContext(ctx.Err(), "mutation abandoned")
		}
		c.observe(m, metrics.ResultError, err)
		c.logger.Error("mutation failed",
			"correlation_id", m.CorrelationID,
			"kind", m.Kind,
			"entity_id", m.EntityID,
			"field", m.Field,
			"error", err,
		)
		if m.Kind == KindToggleField {
			return &Reconciliation{Mutation: m, Previous: m.Previous, Err: err}, err
		}
		return nil, err
	}

	c.observe(m, metrics.ResultSuccess, nil)
	c.logger.Debug("mutation acknowledged",
		"correlation_id", m.CorrelationID,
		"kind", m.Kind,
		"entity_id", m.EntityID,
	)
	return nil, nil
}

func (c *Controller) observe(m Mutation, result string, err error) {
	c.metrics.ObserveMutation(metrics.MutationMetric{
		Resource: c.resource,
		Kind:     string(m.Kind),
		Result:   result,
		Err:      err,
	})
}

// ApplyDelete removes the acknowledged delete's entity from items.
// It reports false when the entity is no longer present.
func ApplyDelete(items []model.Entity, m Mutation) ([]model.Entity, bool) {
	if m.Kind != KindDelete {
		return items, false
	}
	return model.RemoveByID(items, m.EntityID)
}

// Rollback restores the pre-mutation value of a failed toggle. It only applies
// when the entity still holds the optimistic value, so a newer toggle is never
// overwritten. A previously missing field is removed again.
func Rollback(items []model.Entity, rec Reconciliation) ([]model.Entity, bool) {
	m := rec.Mutation
	idx := model.IndexOf(items, m.EntityID)
	if idx < 0 {
		return items, false
	}
	current, ok := items[idx].Value(m.Field)
	if !ok || !reflect.DeepEqual(current, m.Value) {
		return items, false
	}
	restored := items[idx].With(m.Field, rec.Previous)
	if rec.Previous == nil {
		delete(restored.Fields, m.Field)
	}
	return model.ReplaceByID(items, restored)
}
