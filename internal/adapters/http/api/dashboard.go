package api

import (
	"context"
	"net/http"

	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/domain/calendar"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/pkg/logger"
)

// DashboardDependencies defines the aggregated dashboard views.
type DashboardDependencies interface {
	Overview(ctx context.Context, owner string) (*service.Overview, error)
	Calendar(ctx context.Context, owner string, mode calendar.ViewMode, month, selected string) (*service.CalendarView, error)
	Agenda(ctx context.Context, owner, day string) (*service.AgendaView, error)
	Progress(ctx context.Context, owner string) (*service.ProgressView, error)
	MapPins(ctx context.Context, owner string) (*service.MapView, error)
}

// DashboardHandler handles dashboard requests.
type DashboardHandler struct {
	deps  DashboardDependencies
	owner ownerFunc
	log   logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies, owner ownerFunc, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{deps: deps, owner: owner, log: log}
}

// HandleOverview handles GET /dashboard/overview requests.
func (h *DashboardHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Overview(r.Context(), h.owner(r))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCalendar handles GET /dashboard/calendar?view=&month=&selected= requests.
func (h *DashboardHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := calendar.ParseViewMode(q.Get("view"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	out, err := h.deps.Calendar(r.Context(), h.owner(r), mode, q.Get("month"), q.Get("selected"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAgenda handles GET /dashboard/agenda?day=YYYY-MM-DD requests.
func (h *DashboardHandler) HandleAgenda(w http.ResponseWriter, r *http.Request) {
	const op = "api.agenda"
	day := r.URL.Query().Get("day")
	if day == "" {
		writeFailure(r.Context(), w, h.log, types.Invalid(op, "missing day"))
		return
	}
	out, err := h.deps.Agenda(r.Context(), h.owner(r), day)
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleProgress handles GET /dashboard/progress requests.
func (h *DashboardHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Progress(r.Context(), h.owner(r))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleMapPins handles GET /map/pins requests.
func (h *DashboardHandler) HandleMapPins(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.MapPins(r.Context(), h.owner(r))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
