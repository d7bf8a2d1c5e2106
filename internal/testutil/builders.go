package testutil

import (
	"fmt"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// EntityBuilder provides a fluent interface for building entities in tests.
type EntityBuilder struct {
	id     string
	fields map[string]any
}

// NewEntity starts an entity with the given id under model.DefaultIDField.
func NewEntity(id string) *EntityBuilder {
	return &EntityBuilder{
		id:     id,
		fields: map[string]any{model.DefaultIDField: id},
	}
}

// With sets an arbitrary field.
func (b *EntityBuilder) With(field string, value any) *EntityBuilder {
	b.fields[field] = value
	return b
}

// Published sets the products toggle field.
func (b *EntityBuilder) Published(v bool) *EntityBuilder {
	return b.With("published", v)
}

// Status sets the order status field.
func (b *EntityBuilder) Status(status string) *EntityBuilder {
	return b.With("status", status)
}

// Build returns the entity.
func (b *EntityBuilder) Build() model.Entity {
	fields := make(map[string]any, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return model.Entity{ID: b.id, Fields: fields}
}

// Entities returns n entities with ids prefix1..prefixN, each carrying a title.
func Entities(prefix string, n int) []model.Entity {
	out := make([]model.Entity, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%s%d", prefix, i)
		out = append(out, NewEntity(id).With("title", "Item "+id).Build())
	}
	return out
}

// Orders returns one order per status, ids o1..oN.
func Orders(statuses ...string) []model.Entity {
	out := make([]model.Entity, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, NewEntity(fmt.Sprintf("o%d", i+1)).Status(s).Build())
	}
	return out
}
