package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/pkg/logger"
)

// MySchoolDependencies defines the list operations.
type MySchoolDependencies interface {
	ListMySchools(ctx context.Context, owner string, f repository.MySchoolFilter) ([]model.MySchool, error)
	AddMySchool(ctx context.Context, owner string, m model.MySchool) (*model.MySchool, error)
	GetMySchool(ctx context.Context, owner, id string) (*model.MySchool, error)
	UpdateMySchool(ctx context.Context, owner, id string, p repository.MySchoolPatch) (*model.MySchool, error)
	DeleteMySchool(ctx context.Context, owner, id string) error
	ReorderMySchools(ctx context.Context, owner string, ids []string) error
}

// MySchoolsHandler handles requests on the owner's school list.
type MySchoolsHandler struct {
	deps  MySchoolDependencies
	owner ownerFunc
	log   logger.Logger
}

// NewMySchoolsHandler creates a new list handler.
func NewMySchoolsHandler(deps MySchoolDependencies, owner ownerFunc, log logger.Logger) *MySchoolsHandler {
	return &MySchoolsHandler{deps: deps, owner: owner, log: log}
}

// HandleList handles GET /my-schools?bucket=&env_eng=&sort= requests.
func (h *MySchoolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.deps.ListMySchools(r.Context(), h.owner(r), repository.MySchoolFilter{
		Bucket: q.Get("bucket"),
		EnvEng: q.Get("env_eng"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type addMySchoolRequest struct {
	SchoolID      string  `json:"school_id"`
	Status        string  `json:"status"`
	RankingBucket *string `json:"ranking_bucket"`
	Notes         *string `json:"notes"`
	Prestige      *int    `json:"prestige"`
	EnvFit        *int    `json:"env_fit"`
	LocationFit   *int    `json:"location_fit"`
	VibeFit       *int    `json:"vibe_fit"`
}

// HandleAdd handles POST /my-schools requests.
func (h *MySchoolsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_my_school"
	var req addMySchoolRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	m, err := h.deps.AddMySchool(r.Context(), h.owner(r), model.MySchool{
		SchoolID:      req.SchoolID,
		Status:        req.Status,
		RankingBucket: req.RankingBucket,
		Notes:         req.Notes,
		Prestige:      req.Prestige,
		EnvFit:        req.EnvFit,
		LocationFit:   req.LocationFit,
		VibeFit:       req.VibeFit,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleGet handles GET /my-schools/{id} requests.
func (h *MySchoolsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.GetMySchool(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// updateMySchoolRequest is a partial update. An empty ranking_bucket
// clears the bucket.
type updateMySchoolRequest struct {
	Status        *string `json:"status"`
	RankingBucket *string `json:"ranking_bucket"`
	Notes         *string `json:"notes"`
	Prestige      *int    `json:"prestige"`
	EnvFit        *int    `json:"env_fit"`
	LocationFit   *int    `json:"location_fit"`
	VibeFit       *int    `json:"vibe_fit"`
}

func (u updateMySchoolRequest) patch() repository.MySchoolPatch {
	p := repository.MySchoolPatch{
		Status:      u.Status,
		Notes:       u.Notes,
		Prestige:    u.Prestige,
		EnvFit:      u.EnvFit,
		LocationFit: u.LocationFit,
		VibeFit:     u.VibeFit,
	}
	if u.RankingBucket != nil {
		if strings.TrimSpace(*u.RankingBucket) == "" {
			p.ClearBucket = true
		} else {
			p.RankingBucket = u.RankingBucket
		}
	}
	return p
}

// HandleUpdate handles PATCH /my-schools/{id} requests.
func (h *MySchoolsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_my_school"
	var req updateMySchoolRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	m, err := h.deps.UpdateMySchool(r.Context(), h.owner(r), r.PathValue("id"), req.patch())
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /my-schools/{id} requests.
func (h *MySchoolsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMySchool(r.Context(), h.owner(r), r.PathValue("id")); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// HandleReorder handles PUT /my-schools/order requests.
func (h *MySchoolsHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	const op = "api.reorder_my_schools"
	var req reorderRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	if len(req.IDs) == 0 {
		writeFailure(r.Context(), w, h.log, types.Invalid(op, "ids must not be empty"))
		return
	}
	if err := h.deps.ReorderMySchools(r.Context(), h.owner(r), req.IDs); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
