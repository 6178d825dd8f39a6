package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// DashboardHandler serves the dashboard statistics endpoints.
type DashboardHandler struct {
	dashboards service.DashboardService
	logger     *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboards service.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		dashboards: dashboards,
		logger:     logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Global handles GET /api/tasks/dashboard-data. Admin only.
func (h *DashboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	dashboard, err := h.dashboards.GetDashboard(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newDashboardResponse(dashboard))
}

// Member handles GET /api/tasks/user-dashboard-data.
func (h *DashboardHandler) Member(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	dashboard, err := h.dashboards.GetMemberDashboard(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newDashboardResponse(dashboard))
}
