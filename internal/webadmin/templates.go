// ABOUTME: Template rendering functions for the admin console
// ABOUTME: Loads templates from the embedded filesystem and renders them inside the shell

package webadmin

import (
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"github.com/bmi-ci/chatbot360-admin/internal/assets"
	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/chatconsole"
	"github.com/bmi-ci/chatbot360-admin/internal/dashboard"
	"github.com/bmi-ci/chatbot360-admin/internal/export"
	"github.com/bmi-ci/chatbot360-admin/internal/store"
)

// Navigation sections
const (
	navDashboard     = "dashboard"
	navDocuments     = "documents"
	navConversations = "conversations"
	navChatbot       = "chatbot"
	navUsers         = "users"
)

type navItem struct {
	Key   string
	Label string
	Href  string
}

// navItems is the side menu, in display order
var navItems = []navItem{
	{Key: navDashboard, Label: "Tableau de bord", Href: "/"},
	{Key: navDocuments, Label: "Documents", Href: "/documents"},
	{Key: navConversations, Label: "Conversations", Href: "/conversations"},
	{Key: navChatbot, Label: "Test Chatbot", Href: "/chatbot"},
	{Key: navUsers, Label: "Utilisateurs", Href: "/users"},
}

var templateFuncs = template.FuncMap{
	"asset":    assets.URL,
	"markdown": chatconsole.RenderMarkdown,
	"frDate": func(t backend.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02/01/2006")
	},
	"frDateTime": func(t backend.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(export.TimestampLayout)
	},
	"contains": func(list []string, s string) bool { return slices.Contains(list, s) },
	"seconds": func(v float64) string {
		return fmt.Sprintf("%.1fs", v)
	},
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

// Template data types

// shellData is shared by every page rendered inside the navigation shell
type shellData struct {
	Title     string
	Active    string
	Nav       []navItem
	Username  string
	CSRFToken string
	Flash     *flash
}

type loginData struct {
	Title     string
	Username  string
	Message   string
	Success   bool
	CSRFToken string
}

type dashboardData struct {
	shellData
	Stats dashboard.Stats
}

type documentForm struct {
	Title       string
	Description string
	UploadedBy  string
}

type documentsData struct {
	shellData
	Documents []backend.Document
	LoadError string
	Form      documentForm
}

type conversationsData struct {
	shellData
	Conversations []backend.Conversation
	LoadError     string
	StartDate     string
	EndDate       string
	FilterQuery   template.URL
	Roles         []string
}

type usersData struct {
	shellData
	Users       []backend.User
	LoadError   string
	NewUsername string
}

type chatbotData struct {
	shellData
	State *store.ChatState
	Debug string
}

// shell builds the common page data for the current operator
func (a *Admin) shell(w http.ResponseWriter, r *http.Request, title, active string) shellData {
	_, token := a.ensureCSRFToken(w, r)
	data := shellData{
		Title:     title,
		Active:    active,
		Nav:       navItems,
		CSRFToken: token,
		Flash:     popFlash(w, r),
	}
	data.Username = operatorName(r)
	return data
}

// render parses the base layout with one page template and executes it
func (a *Admin) render(w http.ResponseWriter, page string, data any) {
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	if err != nil {
		a.logger.Error("failed to parse template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		a.logger.Error("failed to render page", "page", page, "error", err)
	}
}

// renderLoginPage renders the login page
func (a *Admin) renderLoginPage(w http.ResponseWriter, username, message string, success bool, csrfToken string) {
	a.render(w, "login.html", loginData{
		Title:     "Connexion BMI Admin",
		Username:  username,
		Message:   message,
		Success:   success,
		CSRFToken: csrfToken,
	})
}
