// ABOUTME: Operator session manager, the single read/write boundary for login state
// ABOUTME: Issues signed cookies backed by SQLite rows and gates protected handlers

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bmi-ci/chatbot360-admin/internal/store"
)

const (
	// CookieName is the name of the session cookie
	CookieName = "chatbot360_session"

	// LoginPath is where unauthenticated requests are sent
	LoginPath = "/login"

	// DefaultTTL is how long sessions last when no TTL is configured
	DefaultTTL = 7 * 24 * time.Hour
)

// ErrNoSession is returned when the request carries no usable session.
var ErrNoSession = errors.New("no session")

// Session is the operator state every protected view receives.
type Session = store.Session

type contextKey string

const sessionContextKey contextKey = "session"

// Manager owns the operator session: cookie, signature and stored row.
type Manager struct {
	store  store.SessionStore
	signer *Signer
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a session manager. A non-positive ttl falls back to DefaultTTL.
func NewManager(sessions store.SessionStore, secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  sessions,
		signer: NewSigner(secret),
		ttl:    ttl,
		logger: slog.Default().With("component", "session"),
		now:    time.Now,
	}
}

// Start records a logged-in session for username and sets the cookie.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, username string) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("starting session: username is required")
	}

	id, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	now := m.now()
	sess := &Session{
		ID:        id,
		Username:  username,
		LoggedIn:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.CreateSession(r.Context(), sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	token, err := m.signer.Sign(id, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("signing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Info("session started", "username", username)
	return sess, nil
}

// Load returns the session referenced by the request cookie.
// It does not check the logged-in flag; Require does.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	id, err := m.signer.Verify(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	sess, err := m.store.GetSession(r.Context(), id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// End removes the stored session, if any, and clears the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cerr := r.Cookie(CookieName); cerr == nil && cookie.Value != "" {
		if id, verr := m.signer.Verify(cookie.Value); verr == nil {
			err = m.store.DeleteSession(r.Context(), id)
		}
	}

	m.clearCookie(w, r)

	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Require wraps a handler so it only runs for a logged-in session with a username.
// Any other state is cleared and the request is redirected to the login page.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Load(r)
		if err != nil || !sess.LoggedIn || sess.Username == "" {
			if err != nil && !errors.Is(err, ErrNoSession) {
				m.logger.Error("failed to load session", "error", err)
			}
			if endErr := m.End(w, r); endErr != nil {
				m.logger.Warn("failed to clear partial session", "error", endErr)
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireFunc is Require for plain handler functions.
func (m *Manager) RequireFunc(next http.HandlerFunc) http.HandlerFunc {
	return m.Require(next).ServeHTTP
}

// Sweep deletes expired sessions every interval until ctx is done.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.store.DeleteExpiredSessions(ctx)
			if err != nil {
				m.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				m.logger.Info("swept expired sessions", "count", removed)
			}
		}
	}
}

func (m *Manager) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// FromContext returns the session stored by Require, or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey).(*Session)
	return sess
}

// GenerateSecureToken returns n random bytes as hex.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
