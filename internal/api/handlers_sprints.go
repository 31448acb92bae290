package api

import (
	"net/http"
	"strconv"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/tracker"
)

type SprintHandler struct {
	svc *tracker.SprintService
}

func NewSprintHandler(svc *tracker.SprintService) *SprintHandler {
	return &SprintHandler{svc: svc}
}

// List handles GET /sprints with an optional project_id filter.
func (h *SprintHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		sprints []model.Sprint
		err     error
	)
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		sprints, err = h.svc.FindByProject(r.Context(), projectID)
	} else {
		sprints, err = h.svc.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sprints)
}

// Create handles POST /sprints.
func (h *SprintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var sprint model.Sprint
	if err := decodeJSON(r, &sprint); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), &sprint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /sprints/{id}.
func (h *SprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sprint id")
		return
	}

	sprint, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sprint == nil {
		writeError(w, http.StatusNotFound, "sprint not found")
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

// Update handles PUT /sprints/{id}.
func (h *SprintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sprint id")
		return
	}

	var sprint model.Sprint
	if err := decodeJSON(r, &sprint); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sprint.ID = id

	updated, err := h.svc.Update(r.Context(), &sprint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /sprints/{id}.
func (h *SprintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sprint id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
