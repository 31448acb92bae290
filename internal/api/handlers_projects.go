package api

import (
	"net/http"
	"strconv"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/tracker"
)

type ProjectHandler struct {
	svc *tracker.ProjectService
}

func NewProjectHandler(svc *tracker.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List handles GET /projects with optional owner_id and status filters.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		projects []model.Project
		err      error
	)
	switch {
	case r.URL.Query().Get("owner_id") != "":
		ownerID, perr := strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid owner_id")
			return
		}
		projects, err = h.svc.FindByOwner(r.Context(), ownerID)
	case r.URL.Query().Get("status") != "":
		projects, err = h.svc.FindByStatus(r.Context(), r.URL.Query().Get("status"))
	default:
		projects, err = h.svc.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var project model.Project
	if err := decodeJSON(r, &project); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), &project)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Update handles PUT /projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var project model.Project
	if err := decodeJSON(r, &project); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	project.ID = id

	updated, err := h.svc.Update(r.Context(), &project)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
