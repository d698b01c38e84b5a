// ABOUTME: Tests for the session manager and the Require guard
// ABOUTME: Uses a real SQLite store in a temp dir and httptest recorders

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmi-ci/chatbot360-admin/internal/store"
)

var testSecret = []byte("test-secret-key-for-sessions")

func newTestManager(t *testing.T) (*Manager, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return NewManager(s, testSecret, time.Hour), s
}

// startSession logs in username and returns the cookie the browser would send back.
func startSession(t *testing.T, m *Manager, username string) (*Session, *http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	sess, err := m.Start(rec, req, username)
	require.NoError(t, err)

	return sess, findCookie(t, rec, CookieName)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		sess := FromContext(r.Context())
		if sess == nil {
			http.Error(w, "no session in context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sess.Username))
	})
}

func TestStartAndLoad(t *testing.T) {
	m, _ := newTestManager(t)

	sess, cookie := startSession(t, m, "admin")
	assert.True(t, sess.LoggedIn)
	assert.Equal(t, "admin", sess.Username)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	loaded, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "admin", loaded.Username)
	assert.True(t, loaded.LoggedIn)
}

func TestStart_RequiresUsername(t *testing.T) {
	m, _ := newTestManager(t)

	rec := httptest.NewRecorder()
	_, err := m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "")
	assert.Error(t, err)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoad_NoCookie(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRequire_AllowsLoggedInSession(t *testing.T) {
	m, _ := newTestManager(t)
	_, cookie := startSession(t, m, "admin")

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	m.Require(protectedHandler(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestRequire_RedirectsWithoutCookie(t *testing.T) {
	m, _ := newTestManager(t)

	var called bool
	rec := httptest.NewRecorder()
	m.Require(protectedHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequire_RedirectsTamperedCookie(t *testing.T) {
	m, _ := newTestManager(t)
	_, cookie := startSession(t, m, "admin")

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value + "x"})
	rec := httptest.NewRecorder()

	m.Require(protectedHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := findCookie(t, rec, CookieName)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRequire_PartialStateIsCleared(t *testing.T) {
	tests := []struct {
		name     string
		username string
		loggedIn bool
	}{
		{name: "flag without username", username: "", loggedIn: true},
		{name: "username without flag", username: "admin", loggedIn: false},
		{name: "neither", username: "", loggedIn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newTestManager(t)
			ctx := context.Background()

			now := time.Now()
			partial := &store.Session{
				ID:        "partial-" + tt.name,
				Username:  tt.username,
				LoggedIn:  tt.loggedIn,
				CreatedAt: now,
				ExpiresAt: now.Add(time.Hour),
			}
			require.NoError(t, s.CreateSession(ctx, partial))

			token, err := m.signer.Sign(partial.ID, time.Hour)
			require.NoError(t, err)

			var called bool
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			rec := httptest.NewRecorder()

			m.Require(protectedHandler(&called)).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, LoginPath, rec.Header().Get("Location"))

			_, err = s.GetSession(ctx, partial.ID)
			assert.ErrorIs(t, err, store.ErrSessionNotFound, "partial session row should be deleted")

			cleared := findCookie(t, rec, CookieName)
			assert.Less(t, cleared.MaxAge, 0)
		})
	}
}

func TestEnd_DeletesSession(t *testing.T) {
	m, s := newTestManager(t)
	sess, cookie := startSession(t, m, "admin")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	require.NoError(t, m.End(rec, req))

	_, err := s.GetSession(context.Background(), sess.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.Less(t, findCookie(t, rec, CookieName).MaxAge, 0)
}

func TestEnd_WithoutCookie(t *testing.T) {
	m, _ := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.End(rec, httptest.NewRequest(http.MethodPost, "/logout", nil)))
	assert.Less(t, findCookie(t, rec, CookieName).MaxAge, 0)
}

// sweepCounter records DeleteExpiredSessions calls.
type sweepCounter struct {
	store.SessionStore
	calls atomic.Int32
}

func (c *sweepCounter) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return c.SessionStore.DeleteExpiredSessions(ctx)
}

func TestSweep_RunsUntilCancelled(t *testing.T) {
	_, s := newTestManager(t)
	counter := &sweepCounter{SessionStore: s}
	m := NewManager(counter, testSecret, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Sweep(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return counter.calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sweep did not stop after cancel")
	}
}

func TestSweep_ZeroIntervalReturns(t *testing.T) {
	m, _ := newTestManager(t)
	m.Sweep(context.Background(), 0)
}

func TestFromContext_Empty(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
