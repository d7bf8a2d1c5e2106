package model

import "time"

// Session identifies one operator browser. Each session owns its own resource views.
// APIToken is the upstream bearer token held for the session's duration (may be empty).
type Session struct {
	ID        string    `json:"id"`
	APIToken  string    `json:"api_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
