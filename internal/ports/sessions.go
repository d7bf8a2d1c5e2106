package ports

import (
	"context"
	"errors"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// ErrSessionNotFound is returned when a session is missing or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves console sessions.
type SessionStore interface {
	Save(ctx context.Context, sess model.Session) error
	Get(ctx context.Context, id string) (model.Session, error)
	Delete(ctx context.Context, id string) error
}
