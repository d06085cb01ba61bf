// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/pkg/logger"
)

// OwnerHeader carries the owner a request is scoped to.
const OwnerHeader = "X-Owner-ID"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SchoolDependencies
	MySchoolDependencies
	ApplicationDependencies
	TaskDependencies
	DashboardDependencies
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	schoolsHandler     *SchoolsHandler
	mySchoolsHandler   *MySchoolsHandler
	applicationHandler *ApplicationsHandler
	tasksHandler       *TasksHandler
	dashboardHandler   *DashboardHandler

	defaultOwner string
	log          logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultOwner scopes requests without an owner header.
func WithDefaultOwner(owner string) Option {
	return func(s *Server) {
		if owner != "" {
			s.defaultOwner = owner
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		defaultOwner: "local",
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.schoolsHandler = NewSchoolsHandler(deps, s.log)
	s.mySchoolsHandler = NewMySchoolsHandler(deps, s.owner, s.log)
	s.applicationHandler = NewApplicationsHandler(deps, s.owner, s.log)
	s.tasksHandler = NewTasksHandler(deps, s.owner, s.log)
	s.dashboardHandler = NewDashboardHandler(deps, s.owner, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /schools", "schools", s.schoolsHandler.HandleList)
	route("POST /schools", "schools", s.schoolsHandler.HandleCreate)

	route("GET /my-schools", "my_schools", s.mySchoolsHandler.HandleList)
	route("POST /my-schools", "my_schools", s.mySchoolsHandler.HandleAdd)
	route("PUT /my-schools/order", "my_schools_order", s.mySchoolsHandler.HandleReorder)
	route("GET /my-schools/{id}", "my_school", s.mySchoolsHandler.HandleGet)
	route("PATCH /my-schools/{id}", "my_school", s.mySchoolsHandler.HandleUpdate)
	route("DELETE /my-schools/{id}", "my_school", s.mySchoolsHandler.HandleDelete)
	route("GET /my-schools/{id}/applications", "my_school_applications", s.applicationHandler.HandleListForMySchool)

	route("GET /applications", "applications", s.applicationHandler.HandleList)
	route("POST /applications", "applications", s.applicationHandler.HandleCreate)
	route("GET /applications/{id}", "application", s.applicationHandler.HandleGet)
	route("PATCH /applications/{id}", "application", s.applicationHandler.HandleSave)
	route("DELETE /applications/{id}", "application", s.applicationHandler.HandleDelete)
	route("GET /applications/{id}/tasks", "application_tasks", s.tasksHandler.HandleListForApplication)

	route("POST /tasks", "tasks", s.tasksHandler.HandleCreate)
	route("PATCH /tasks/{id}", "task", s.tasksHandler.HandleUpdate)
	route("DELETE /tasks/{id}", "task", s.tasksHandler.HandleDelete)

	route("GET /dashboard/overview", "dashboard_overview", s.dashboardHandler.HandleOverview)
	route("GET /dashboard/calendar", "dashboard_calendar", s.dashboardHandler.HandleCalendar)
	route("GET /dashboard/agenda", "dashboard_agenda", s.dashboardHandler.HandleAgenda)
	route("GET /dashboard/progress", "dashboard_progress", s.dashboardHandler.HandleProgress)
	route("GET /map/pins", "map_pins", s.dashboardHandler.HandleMapPins)
}

// owner resolves the owner of r.
func (s *Server) owner(r *http.Request) string {
	if o := r.Header.Get(OwnerHeader); o != "" {
		return o
	}
	return s.defaultOwner
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates an error kind into a status code.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		log.Error(ctx, "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(op string, r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return types.WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
