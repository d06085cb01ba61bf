package api

import (
	"context"
	"net/http"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/pkg/logger"
)

// TaskDependencies defines the task operations.
type TaskDependencies interface {
	ListTasksForApplication(ctx context.Context, owner, applicationID string) ([]model.Task, error)
	CreateTask(ctx context.Context, owner string, t model.Task) (*model.Task, error)
	ToggleTask(ctx context.Context, owner, id string, done bool) (*model.Task, error)
	UpdateTask(ctx context.Context, owner, id string, p repository.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error
}

// TasksHandler handles task requests.
type TasksHandler struct {
	deps  TaskDependencies
	owner ownerFunc
	log   logger.Logger
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps TaskDependencies, owner ownerFunc, log logger.Logger) *TasksHandler {
	return &TasksHandler{deps: deps, owner: owner, log: log}
}

// HandleListForApplication handles GET /applications/{id}/tasks requests.
func (h *TasksHandler) HandleListForApplication(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListTasksForApplication(r.Context(), h.owner(r), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createTaskRequest struct {
	Title         string  `json:"title"`
	DueDate       *string `json:"due_date"`
	ApplicationID *string `json:"application_id"`
	Done          bool    `json:"done"`
}

// HandleCreate handles POST /tasks requests.
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_task"
	var req createTaskRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	t, err := h.deps.CreateTask(r.Context(), h.owner(r), model.Task{
		Title:         req.Title,
		DueDate:       req.DueDate,
		ApplicationID: req.ApplicationID,
		Done:          req.Done,
	})
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// updateTaskRequest is a partial update. done toggles completion; empty
// due_date or application_id clear the field.
type updateTaskRequest struct {
	Title         *string `json:"title"`
	DueDate       *string `json:"due_date"`
	ApplicationID *string `json:"application_id"`
	Done          *bool   `json:"done"`
}

func (u updateTaskRequest) hasFields() bool {
	return u.Title != nil || u.DueDate != nil || u.ApplicationID != nil
}

// HandleUpdate handles PATCH /tasks/{id} requests.
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_task"
	var req updateTaskRequest
	if err := decodeJSON(op, r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	ctx, owner, id := r.Context(), h.owner(r), r.PathValue("id")

	var (
		t   *model.Task
		err error
	)
	if req.hasFields() || req.Done == nil {
		t, err = h.deps.UpdateTask(ctx, owner, id, repository.TaskPatch{
			Title:         req.Title,
			DueDate:       req.DueDate,
			ApplicationID: req.ApplicationID,
		})
		if err != nil {
			writeFailure(ctx, w, h.log, err)
			return
		}
	}
	if req.Done != nil {
		if t, err = h.deps.ToggleTask(ctx, owner, id, *req.Done); err != nil {
			writeFailure(ctx, w, h.log, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDelete handles DELETE /tasks/{id} requests.
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteTask(r.Context(), h.owner(r), r.PathValue("id")); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
