// ABOUTME: Conversations view handlers: filtered list, inline edit, delete, bulk delete and CSV export
// ABOUTME: Bulk delete fans out one backend call per id and waits for all of them

package webadmin

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/export"
)

// Conversations messages
const (
	msgConversationsLoadError  = "Erreur lors du chargement des conversations"
	msgConversationUpdated     = "Conversation modifiée avec succès"
	msgConversationUpdateError = "Erreur lors de la modification"
	msgConversationDeleted     = "Conversation supprimée avec succès"
	msgConversationDeleteError = "Erreur lors de la suppression"
	msgConversationsDeleted    = "%d conversation(s) supprimée(s)"
	conversationsPath          = "/conversations"
)

var conversationRoles = []string{backend.RoleUser, backend.RoleAssistant, backend.RoleSystem}

// conversationFilter reads the date range from the query string or the posted form
func conversationFilter(r *http.Request) backend.ConversationFilter {
	return backend.ConversationFilter{
		StartDate: strings.TrimSpace(r.FormValue("start_date")),
		EndDate:   strings.TrimSpace(r.FormValue("end_date")),
	}
}

// filterQuery encodes a filter for links and redirects
func filterQuery(f backend.ConversationFilter) string {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	return q.Encode()
}

// conversationsTarget is the list page with the filter kept
func conversationsTarget(f backend.ConversationFilter) string {
	if q := filterQuery(f); q != "" {
		return conversationsPath + "?" + q
	}
	return conversationsPath
}

func (a *Admin) handleConversations(w http.ResponseWriter, r *http.Request) {
	filter := conversationFilter(r)
	data := conversationsData{
		shellData:   a.shell(w, r, "Conversations", navConversations),
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		FilterQuery: template.URL(filterQuery(filter)),
		Roles:       conversationRoles,
	}

	convos, err := a.api.ListConversations(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list conversations", "error", err)
		data.LoadError = msgConversationsLoadError
	}
	data.Conversations = convos

	a.render(w, "conversations.html", data)
}

// handleConversationsExport downloads the filtered list as CSV
func (a *Admin) handleConversationsExport(w http.ResponseWriter, r *http.Request) {
	convos, err := a.api.ListConversations(r.Context(), conversationFilter(r))
	if err != nil {
		a.logger.Error("failed to list conversations for export", "error", err)
		http.Error(w, msgConversationsLoadError, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	if err := export.WriteCSV(w, convos); err != nil {
		a.logger.Error("failed to write CSV export", "error", err)
	}
}

func (a *Admin) handleConversationUpdate(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	id := r.PathValue("id")
	target := conversationsTarget(conversationFilter(r))
	update := backend.ConversationUpdate{
		Message:  r.FormValue("message"),
		Role:     r.FormValue("role"),
		UserName: strings.TrimSpace(r.FormValue("user_name")),
	}

	if err := a.api.UpdateConversation(r.Context(), id, update); err != nil {
		a.logger.Error("failed to update conversation", "id", id, "error", err)
		redirectWithFlash(w, r, target, flashError, msgConversationUpdateError)
		return
	}

	redirectWithFlash(w, r, target, flashSuccess, msgConversationUpdated)
}

func (a *Admin) handleConversationDelete(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	id := r.PathValue("id")
	target := conversationsTarget(conversationFilter(r))

	if err := a.api.DeleteConversation(r.Context(), id); err != nil {
		a.logger.Error("failed to delete conversation", "id", id, "error", err)
		redirectWithFlash(w, r, target, flashError, msgConversationDeleteError)
		return
	}

	redirectWithFlash(w, r, target, flashSuccess, msgConversationDeleted)
}

// handleConversationsBulkDelete deletes every selected id and reports one outcome
func (a *Admin) handleConversationsBulkDelete(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	target := conversationsTarget(conversationFilter(r))
	ids := r.Form["ids"]
	if len(ids) == 0 {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	// A plain group: one failure must not cancel the other deletions
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if err := a.api.DeleteConversation(r.Context(), id); err != nil {
				return fmt.Errorf("deleting conversation %s: %w", id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Error("bulk delete failed", "count", len(ids), "error", err)
		redirectWithFlash(w, r, target, flashError, msgConversationDeleteError)
		return
	}

	a.logger.Info("conversations deleted", "count", len(ids))
	redirectWithFlash(w, r, target, flashSuccess, fmt.Sprintf(msgConversationsDeleted, len(ids)))
}
