// ABOUTME: Dashboard handler showing totals, recent items and trends
// ABOUTME: Load failures are logged and leave the stats zeroed

package webadmin

import (
	"net/http"

	"github.com/bmi-ci/chatbot360-admin/internal/dashboard"
)

func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := dashboard.Load(r.Context(), a.api)
	if err != nil {
		a.logger.Error("failed to load dashboard", "error", err)
	}

	a.render(w, "dashboard.html", dashboardData{
		shellData: a.shell(w, r, "Tableau de bord", navDashboard),
		Stats:     stats,
	})
}
