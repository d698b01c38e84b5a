// ABOUTME: Users view handlers: list, create with password confirmation, delete
// ABOUTME: Backend accounts are never edited from the console

package webadmin

import (
	"net/http"
	"strings"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

// Users messages
const (
	msgUsersLoadError     = "Erreur lors du chargement des utilisateurs"
	msgUserAdded          = "Utilisateur ajouté avec succès"
	msgUserAddError       = "Erreur lors de l'ajout de l'utilisateur"
	msgUserDeleted        = "Utilisateur supprimé avec succès"
	msgUserDeleteError    = "Erreur lors de la suppression"
	msgPasswordMismatch   = "Les mots de passe ne correspondent pas"
	msgUserFieldsRequired = "L'identifiant et le mot de passe sont requis"
	usersPath             = "/users"
)

func (a *Admin) handleUsers(w http.ResponseWriter, r *http.Request) {
	a.renderUsers(w, r, "", nil)
}

func (a *Admin) renderUsers(w http.ResponseWriter, r *http.Request, newUsername string, msg *flash) {
	data := usersData{
		shellData:   a.shell(w, r, "Utilisateurs", navUsers),
		NewUsername: newUsername,
	}
	if msg != nil {
		data.Flash = msg
	}

	users, err := a.api.ListUsers(r.Context())
	if err != nil {
		a.logger.Error("failed to list users", "error", err)
		data.LoadError = msgUsersLoadError
	}
	data.Users = users

	a.render(w, "users.html", data)
}

func (a *Admin) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	form := userForm{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	username := form.Username

	if msg := checkFields(form, userFormMessages); msg != "" {
		a.renderUsers(w, r, username, &flash{Kind: flashError, Text: msg})
		return
	}

	if err := a.api.Register(r.Context(), form.Username, form.Password); err != nil {
		a.logger.Error("failed to register user", "username", username, "error", err)
		a.renderUsers(w, r, username, &flash{Kind: flashError, Text: backend.UserMessage(err, msgUserAddError)})
		return
	}

	a.logger.Info("user registered", "username", username)
	redirectWithFlash(w, r, usersPath, flashSuccess, msgUserAdded)
}

func (a *Admin) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := a.api.DeleteUser(r.Context(), id); err != nil {
		a.logger.Error("failed to delete user", "id", id, "error", err)
		redirectWithFlash(w, r, usersPath, flashError, backend.UserMessage(err, msgUserDeleteError))
		return
	}

	a.logger.Info("user deleted", "id", id)
	redirectWithFlash(w, r, usersPath, flashSuccess, msgUserDeleted)
}
