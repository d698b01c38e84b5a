// ABOUTME: Login screen handlers: credential check against the backend and connectivity probe
// ABOUTME: Starts the operator session only after the backend accepts the credentials

package webadmin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

// Login messages
const (
	msgLoginRequired     = "Veuillez saisir l'identifiant et le mot de passe."
	msgLoginRejected     = "Identifiant ou mot de passe incorrect !"
	msgLoginUnreachable  = "Erreur de connexion au serveur ! Vérifiez votre connexion."
	msgInvalidRequest    = "Requête invalide, veuillez réessayer."
	msgProbeOK           = "Serveur accessible ! Status: %s"
	msgProbeStatus       = "Serveur non accessible (%d)"
	msgProbeUnreachable  = "Impossible de joindre le serveur"
	msgSessionStartError = "Impossible d'ouvrir la session."
)

// handleLoginPage renders the login form, or sends a signed-in operator home
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := a.sessions.Load(r); err == nil && sess.LoggedIn && sess.Username != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	_, token := a.ensureCSRFToken(w, r)
	a.renderLoginPage(w, "", "", false, token)
}

// handleLogin checks the credentials with the backend and starts a session
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	_, token := a.ensureCSRFToken(w, r)
	form := loginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	username := form.Username

	if !a.validateCSRF(r) {
		a.renderLoginPage(w, username, msgInvalidRequest, false, token)
		return
	}

	if msg := checkFields(form, loginFormMessages); msg != "" {
		a.renderLoginPage(w, username, msg, false, token)
		return
	}

	if err := a.api.Login(r.Context(), form.Username, form.Password); err != nil {
		a.logger.Warn("login rejected", "username", username, "error", err)
		msg := backend.UserMessage(err, msgLoginRejected)
		if backend.IsUnreachable(err) {
			msg = msgLoginUnreachable
		}
		a.renderLoginPage(w, username, msg, false, token)
		return
	}

	if _, err := a.sessions.Start(w, r, username); err != nil {
		a.logger.Error("failed to start session", "username", username, "error", err)
		a.renderLoginPage(w, username, msgSessionStartError, false, token)
		return
	}

	a.logger.Info("operator logged in", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleProbe checks that the admin API answers before the operator logs in
func (a *Admin) handleProbe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	_, token := a.ensureCSRFToken(w, r)
	username := strings.TrimSpace(r.FormValue("username"))

	if !a.validateCSRF(r) {
		a.renderLoginPage(w, username, msgInvalidRequest, false, token)
		return
	}

	status, err := a.api.Health(r.Context())
	switch {
	case err == nil:
		a.renderLoginPage(w, username, fmt.Sprintf(msgProbeOK, status.Status), true, token)
	case backend.StatusCode(err) != 0:
		a.renderLoginPage(w, username, fmt.Sprintf(msgProbeStatus, backend.StatusCode(err)), false, token)
	default:
		a.logger.Warn("backend probe failed", "error", err)
		a.renderLoginPage(w, username, msgProbeUnreachable, false, token)
	}
}
