package api

import (
	"context"
	"net/http"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/pkg/logger"
)

// ApplicationDependencies defines the application operations.
type ApplicationDependencies interface {
	ListApplications(ctx context.Context, owner string) ([]model.Application, error)
	ListApplicationsForMySchool(ctx context.Context, owner, mySchoolID string) ([]model.Application, error)
	CreateApplication(ctx context.Context, owner string, a model.Application) (*model.Application, error)
	GetApplication(ctx context.Context, owner, id string) (*model.Application, error)
	SaveApplication(ctx context.Context, owner, id string, p repository.ApplicationPatch) (*model.Application, error)
	DeleteApplication(ctx context.Context, owner, id string) error
}

// ApplicationsHandler handles application requests.
type ApplicationsHandler struct {
	deps  ApplicationDependencies
	owner ownerFunc
	log   logger.Logger
}

// NewApplicationsHandler creates a new applications handler.
func NewApplicationsHandler(deps ApplicationDependencies, owner ownerFunc, log logger.Logger) *ApplicationsHandler {
	return &ApplicationsHandler{deps: deps, owner: owner, log: log}
}

// HandleList handles GET /applications requests.
func (h *ApplicationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListApplications(r.Context(), h.owner(r))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleListForMySchool handles GET /my-schools/{id}/applications requests.
func (h *ApplicationsHandler) HandleListForMySchool(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListApplicationsForMySchool(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createApplicationRequest struct {
	MySchoolID   *string `json:"my_school_id"`
	Platform     *string `json:"platform"`
	DecisionType *string `json:"decision_type"`
	DeadlineDate *string `json:"deadline_date"`
	Status       string  `json:"status"`
	PortalURL    *string `json:"portal_url"`
}

// HandleCreate handles POST /applications requests.
func (h *ApplicationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_application"
	var req createApplicationRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	a, err := h.deps.CreateApplication(r.Context(), h.owner(r), model.Application{
		MySchoolID:   req.MySchoolID,
		Platform:     req.Platform,
		DecisionType: req.DecisionType,
		DeadlineDate: req.DeadlineDate,
		Status:       req.Status,
		PortalURL:    req.PortalURL,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// HandleGet handles GET /applications/{id} requests.
func (h *ApplicationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.GetApplication(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// saveApplicationRequest is a partial update. An empty deadline_date
// clears the deadline.
type saveApplicationRequest struct {
	Platform     *string `json:"platform"`
	DecisionType *string `json:"decision_type"`
	DeadlineDate *string `json:"deadline_date"`
	Status       *string `json:"status"`
	PortalURL    *string `json:"portal_url"`
}

// HandleSave handles PATCH /applications/{id} requests.
func (h *ApplicationsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_application"
	var req saveApplicationRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	a, err := h.deps.SaveApplication(r.Context(), h.owner(r), r.PathValue("id"), repository.ApplicationPatch{
		Platform:     req.Platform,
		DecisionType: req.DecisionType,
		DeadlineDate: req.DeadlineDate,
		Status:       req.Status,
		PortalURL:    req.PortalURL,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleDelete handles DELETE /applications/{id} requests.
func (h *ApplicationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteApplication(r.Context(), h.owner(r), r.PathValue("id")); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
