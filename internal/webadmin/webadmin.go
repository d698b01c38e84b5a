// ABOUTME: Admin web console for the ChatBot360 platform
// ABOUTME: Wires routes, CSRF protection and flash messages around the backend views

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bmi-ci/chatbot360-admin/internal/assets"
	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/chatconsole"
	"github.com/bmi-ci/chatbot360-admin/internal/session"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "chatbot360_csrf"

	// FlashCookieName carries a one-shot message across a redirect
	FlashCookieName = "chatbot360_flash"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Backend is the part of the admin API the console uses.
type Backend interface {
	Login(ctx context.Context, username, password string) error
	Health(ctx context.Context) (*backend.HealthStatus, error)

	ListUsers(ctx context.Context) ([]backend.User, error)
	Register(ctx context.Context, username, password string) error
	DeleteUser(ctx context.Context, id string) error

	ListDocuments(ctx context.Context) ([]backend.Document, error)
	UploadDocument(ctx context.Context, up backend.DocumentUpload) error
	UpdateDocument(ctx context.Context, id string, update backend.DocumentUpdate) error
	DeleteDocument(ctx context.Context, id string) error
	DocumentFileURL(filename string) string

	ListConversations(ctx context.Context, filter backend.ConversationFilter) ([]backend.Conversation, error)
	UpdateConversation(ctx context.Context, id string, update backend.ConversationUpdate) error
	DeleteConversation(ctx context.Context, id string) error
}

// Admin handles console routes
type Admin struct {
	api      Backend
	sessions *session.Manager
	console  *chatconsole.Console
	logger   *slog.Logger
}

// New creates a new Admin handler
func New(api Backend, sessions *session.Manager, console *chatconsole.Console) *Admin {
	return &Admin{
		api:      api,
		sessions: sessions,
		console:  console,
		logger:   slog.Default().With("component", "webadmin"),
	}
}

// RegisterRoutes registers all console routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	protect := a.sessions.RequireFunc

	// Public routes (no session required)
	mux.HandleFunc("GET /login", a.handleLoginPage)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("POST /login/probe", a.handleProbe)
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.Handle("GET "+assets.Prefix, http.StripPrefix(assets.Prefix, assets.FileServer()))

	// Navigation shell
	mux.HandleFunc("GET /{$}", protect(a.handleDashboard))
	mux.HandleFunc("POST /logout", protect(a.handleLogout))

	// Documents
	mux.HandleFunc("GET /documents", protect(a.handleDocuments))
	mux.HandleFunc("POST /documents", protect(a.handleDocumentUpload))
	mux.HandleFunc("POST /documents/{id}", protect(a.handleDocumentUpdate))
	mux.HandleFunc("POST /documents/{id}/delete", protect(a.handleDocumentDelete))
	mux.HandleFunc("GET /documents/file/{filename}", protect(a.handleDocumentFile))

	// Conversations
	mux.HandleFunc("GET /conversations", protect(a.handleConversations))
	mux.HandleFunc("GET /conversations/export.csv", protect(a.handleConversationsExport))
	mux.HandleFunc("POST /conversations/bulk-delete", protect(a.handleConversationsBulkDelete))
	mux.HandleFunc("POST /conversations/{id}", protect(a.handleConversationUpdate))
	mux.HandleFunc("POST /conversations/{id}/delete", protect(a.handleConversationDelete))

	// Users
	mux.HandleFunc("GET /users", protect(a.handleUsers))
	mux.HandleFunc("POST /users", protect(a.handleUserCreate))
	mux.HandleFunc("POST /users/{id}/delete", protect(a.handleUserDelete))

	// Chat console
	mux.HandleFunc("GET /chatbot", protect(a.handleChatbot))
	mux.HandleFunc("POST /chatbot/send", protect(a.handleChatbotSend))
	mux.HandleFunc("POST /chatbot/reset", protect(a.handleChatbotReset))
	mux.HandleFunc("GET /chatbot/debug", protect(a.handleChatbotDebug))

	a.logger.Info("console routes registered")
}

// handleHealthz reports that the console process is up
func (a *Admin) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleLogout clears every piece of operator state and returns to the login page
func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Logout still proceeds; a stale form should not keep an operator signed in
		if !a.validateCSRF(r) {
			a.logger.Warn("logout request with invalid CSRF token")
		}
	}

	if err := a.sessions.End(w, r); err != nil {
		a.logger.Error("failed to end session", "error", err)
	}

	clearCookie(w, r, CSRFCookieName)
	clearCookie(w, r, FlashCookieName)

	http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (a *Admin) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		a.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // fails validation later
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie
func (a *Admin) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// checkForm parses a mutation form and rejects it when the CSRF token does not match
func (a *Admin) checkForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return false
	}
	if !a.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return false
	}
	return true
}

// Flash kinds
const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash is a one-shot message shown after a redirect.
type flash struct {
	Kind string `json:"k"`
	Text string `json:"t"`
}

// setFlash stores a message for the next page view
func setFlash(w http.ResponseWriter, r *http.Request, kind, text string) {
	data, err := json.Marshal(flash{Kind: kind, Text: text})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending message, if any
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	clearCookie(w, r, FlashCookieName)

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(data, &f); err != nil || f.Text == "" {
		return nil
	}
	return &f
}

// redirectWithFlash sets a message and sends the browser to target
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, text string) {
	setFlash(w, r, kind, text)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
