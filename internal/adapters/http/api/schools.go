package api

import (
	"context"
	"net/http"

	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/pkg/logger"
)

// ownerFunc resolves the owner a request is scoped to.
type ownerFunc func(r *http.Request) string

// SchoolDependencies defines the catalog operations.
type SchoolDependencies interface {
	ListSchools(ctx context.Context, search string) ([]model.School, error)
	CreateSchool(ctx context.Context, sc model.School) (*model.School, error)
}

// SchoolsHandler handles catalog requests.
type SchoolsHandler struct {
	deps SchoolDependencies
	log  logger.Logger
}

// NewSchoolsHandler creates a new schools handler.
func NewSchoolsHandler(deps SchoolDependencies, log logger.Logger) *SchoolsHandler {
	return &SchoolsHandler{deps: deps, log: log}
}

// HandleList handles GET /schools?q= requests.
func (h *SchoolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListSchools(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createSchoolRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	LocationText *string  `json:"location_text"`
	Website      *string  `json:"website"`
	EnvEng       *string  `json:"env_eng"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// HandleCreate handles POST /schools requests.
func (h *SchoolsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_school"
	var req createSchoolRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	sc, err := h.deps.CreateSchool(r.Context(), model.School{
		ID:           req.ID,
		Name:         req.Name,
		LocationText: req.LocationText,
		Website:      req.Website,
		EnvEng:       req.EnvEng,
		Lat:          req.Lat,
		Lng:          req.Lng,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}
