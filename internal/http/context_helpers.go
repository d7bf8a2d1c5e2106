package httpx

import (
	"context"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
func SetSessionInContext(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the console session and a boolean indicating presence.
func SessionFromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	if !ok || s.ID == "" {
		return model.Session{}, false
	}
	return s, true
}
