package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JULEEP/admin-frontend/internal/adapters/memstore"
	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/mocks"
	"github.com/JULEEP/admin-frontend/internal/ports"
	"github.com/JULEEP/admin-frontend/internal/testutil"
)

// echoSession writes the session id seen by the handler.
func echoSession(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("expected session in context")
		}
		w.Header().Set("X-Session", sess.ID)
		w.Header().Set("X-Token", sess.APIToken)
	})
}

func TestSessions_IssuesCookieOnFirstVisit(t *testing.T) {
	clock := testutil.NewTestTimeProvider(testutil.TestTime())
	store := memstore.NewSessionStore(clock.Now)
	mw := Sessions(SessionConfig{
		Store:        store,
		CookieDomain: "example.com",
		TTL:          time.Hour,
		Now:          clock.Now,
		NewID:        func() string { return "sess-1" },
	})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer upstream-token")
	rec := httptest.NewRecorder()
	mw(echoSession(t)).ServeHTTP(rec, req)

	assert.Equal(t, "sess-1", rec.Header().Get("X-Session"))
	assert.Equal(t, "upstream-token", rec.Header().Get("X-Token"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, DefaultSessionCookie, c.Name)
	assert.Equal(t, "sess-1", c.Value)
	assert.Equal(t, "example.com", c.Domain)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)

	saved, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, testutil.TestTime().Add(time.Hour), saved.ExpiresAt)
}

func TestSessions_ReusesExistingSession(t *testing.T) {
	clock := testutil.NewTestTimeProvider(testutil.TestTime())
	store := memstore.NewSessionStore(clock.Now)
	require.NoError(t, store.Save(context.Background(), model.Session{
		ID:        "known",
		APIToken:  "kept",
		CreatedAt: clock.Now(),
		ExpiresAt: clock.Now().Add(time.Hour),
	}))
	mw := Sessions(SessionConfig{Store: store, Now: clock.Now, NewID: func() string { return "fresh" }})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "known"})
	rec := httptest.NewRecorder()
	mw(echoSession(t)).ServeHTTP(rec, req)

	assert.Equal(t, "known", rec.Header().Get("X-Session"))
	assert.Equal(t, "kept", rec.Header().Get("X-Token"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessions_ExpiredSessionIsReplaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	now := testutil.TestTime()

	store.EXPECT().Get(gomock.Any(), "old").Return(model.Session{
		ID:        "old",
		ExpiresAt: now.Add(-time.Minute),
	}, nil)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s model.Session) error {
			assert.Equal(t, "new", s.ID)
			assert.Equal(t, now, s.CreatedAt)
			return nil
		})

	mw := Sessions(SessionConfig{
		Store: store,
		Now:   testutil.FixedTimeFunc(now),
		NewID: func() string { return "new" },
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "old"})
	rec := httptest.NewRecorder()
	mw(echoSession(t)).ServeHTTP(rec, req)

	assert.Equal(t, "new", rec.Header().Get("X-Session"))
}

func TestSessions_UnknownCookieIsReplaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "ghost").Return(model.Session{}, ports.ErrSessionNotFound)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	mw := Sessions(SessionConfig{Store: store, NewID: func() string { return "replacement" }})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "ghost"})
	rec := httptest.NewRecorder()
	mw(echoSession(t)).ServeHTTP(rec, req)

	assert.Equal(t, "replacement", rec.Header().Get("X-Session"))
}

func TestSessions_StoreFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *mocks.MockSessionStore, req *http.Request)
	}{
		{
			name: "lookup fails",
			setup: func(store *mocks.MockSessionStore, req *http.Request) {
				req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "x"})
				store.EXPECT().Get(gomock.Any(), "x").Return(model.Session{}, errors.New("redis down"))
			},
		},
		{
			name: "save fails",
			setup: func(store *mocks.MockSessionStore, _ *http.Request) {
				store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockSessionStore(ctrl)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(store, req)

			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
			rec := httptest.NewRecorder()
			Sessions(SessionConfig{Store: store})(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
		"Bearer":       "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(req), header)
	}
}
