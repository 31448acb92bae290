package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/tracker"
)

type TaskHandler struct {
	svc *tracker.TaskService
}

func NewTaskHandler(svc *tracker.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List handles GET /tasks with optional user_id and sprint_id filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []model.Task
		err   error
	)
	switch {
	case r.URL.Query().Get("user_id") != "":
		userID, perr := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		tasks, err = h.svc.ListByUser(r.Context(), userID)
	case r.URL.Query().Get("sprint_id") != "":
		sprintID, perr := strconv.ParseInt(r.URL.Query().Get("sprint_id"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid sprint_id")
			return
		}
		tasks, err = h.svc.ListBySprint(r.Context(), sprintID)
	default:
		tasks, err = h.svc.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var task model.Task
	if err := decodeJSON(r, &task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), &task)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var task model.Task
	if err := decodeJSON(r, &task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	task.ID = id

	updated, err := h.svc.Update(r.Context(), &task)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Complete handles POST /tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	done, err := h.svc.Complete(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, tracker.ErrNotOwner) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, done)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /kpi.
func (h *TaskHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
