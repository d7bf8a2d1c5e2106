package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

// Session cookie defaults.
const (
	DefaultSessionCookie = "backoffice_session"
	DefaultSessionTTL    = 12 * time.Hour
)

// SessionConfig configures the Sessions middleware.
type SessionConfig struct {
	Store        ports.SessionStore // Required: session persistence
	CookieName   string             // Optional: defaults to DefaultSessionCookie
	CookieDomain string             // Optional: cookie Domain attribute
	TTL          time.Duration      // Optional: defaults to DefaultSessionTTL
	Secure       bool               // Sets the cookie Secure attribute
	Logger       *slog.Logger
	Now          func() time.Time
	NewID        func() string
}

// Sessions returns a middleware that attaches a console session to every
// request, issuing a new session cookie when the request carries none or an
// expired one. A bearer token on the first request is kept as the session's
// upstream API token.
func Sessions(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	logger := cfg.Logger.With("component", "sessions")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := cfg.resolve(r)
			if err != nil {
				logger.ErrorContext(r.Context(), "session store unavailable", "error", err)
				http.Error(w, "Session store unavailable", http.StatusServiceUnavailable)
				return
			}
			if sess.ID == "" {
				if sess, err = cfg.issue(w, r); err != nil {
					logger.ErrorContext(r.Context(), "failed to create session", "error", err)
					http.Error(w, "Session store unavailable", http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
		})
	}
}

// resolve loads the session named by the request cookie. A missing or expired
// session yields the zero Session and no error.
func (cfg SessionConfig) resolve(r *http.Request) (model.Session, error) {
	c, err := r.Cookie(cfg.CookieName)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return model.Session{}, nil
	}
	sess, err := cfg.Store.Get(r.Context(), c.Value)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return model.Session{}, nil
	}
	if err != nil {
		return model.Session{}, err
	}
	if sess.Expired(cfg.Now()) {
		return model.Session{}, nil
	}
	return sess, nil
}

func (cfg SessionConfig) issue(w http.ResponseWriter, r *http.Request) (model.Session, error) {
	now := cfg.Now()
	sess := model.Session{
		ID:        cfg.NewID(),
		APIToken:  bearerToken(r),
		CreatedAt: now,
		ExpiresAt: now.Add(cfg.TTL),
	}
	if err := cfg.Store.Save(r.Context(), sess); err != nil {
		return model.Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  sess.ExpiresAt,
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
