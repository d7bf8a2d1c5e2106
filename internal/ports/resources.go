package ports

// Package ports defines interfaces (hexagonal ports) for the console engine.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// ResourceClient talks to one resource endpoint of the upstream admin API.
// Failures are *errors.AppError values with code transport or not_found.
type ResourceClient interface {
	// List fetches the whole collection in server order.
	List(ctx context.Context) ([]model.Entity, error)
	// Get fetches one entity by id.
	Get(ctx context.Context, id string) (model.Entity, error)
	// PatchField updates a single field of one entity.
	PatchField(ctx context.Context, id, field string, value any) error
	// Delete removes one entity.
	Delete(ctx context.Context, id string) error
}

// ResourceClientFactory builds a ResourceClient for a descriptor using the
// caller's upstream API token (may be empty).
type ResourceClientFactory interface {
	ClientFor(desc model.ResourceDescriptor, apiToken string) (ResourceClient, error)
}
