// ABOUTME: Chat console handlers for testing the chatbot from the admin UI
// ABOUTME: The console state is keyed by the operator session id

package webadmin

import (
	"net/http"

	"github.com/bmi-ci/chatbot360-admin/internal/session"
)

const chatbotPath = "/chatbot"

func (a *Admin) handleChatbot(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	state, err := a.console.State(r.Context(), sess.ID)
	if err != nil {
		a.logger.Error("failed to load chat console", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := chatbotData{
		shellData: a.shell(w, r, "Test Chatbot", navChatbot),
		State:     state,
	}

	if r.URL.Query().Get("debug") == "1" {
		out, err := a.console.Debug(r.Context(), sess.ID)
		if err != nil {
			a.logger.Error("failed to build debug output", "error", err)
		}
		data.Debug = out
	}

	a.render(w, "chatbot.html", data)
}

func (a *Admin) handleChatbotSend(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	sess := session.FromContext(r.Context())
	if _, err := a.console.Send(r.Context(), sess.ID, r.FormValue("message")); err != nil {
		a.logger.Error("chat turn failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, chatbotPath, http.StatusSeeOther)
}

func (a *Admin) handleChatbotReset(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	sess := session.FromContext(r.Context())
	if _, err := a.console.Reset(r.Context(), sess.ID); err != nil {
		a.logger.Error("failed to reset chat console", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, chatbotPath, http.StatusSeeOther)
}

// handleChatbotDebug returns the debug panel as plain text
func (a *Admin) handleChatbotDebug(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	out, err := a.console.Debug(r.Context(), sess.ID)
	if err != nil {
		a.logger.Error("failed to build debug output", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}
