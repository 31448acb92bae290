// Package api serves the team-facing REST surface: task, user, sprint and
// project CRUD, the KPI summary, and a websocket stream of task events.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamflow/sprintbot/internal/tracker"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	tasks *tracker.TaskService,
	users *tracker.UserService,
	sprints *tracker.SprintService,
	projects *tracker.ProjectService,
	hub *EventHub,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	taskH := NewTaskHandler(tasks)
	userH := NewUserHandler(users)
	sprintH := NewSprintHandler(sprints)
	projectH := NewProjectHandler(projects)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/{id}", taskH.Get)
			r.Put("/{id}", taskH.Update)
			r.Post("/{id}/complete", taskH.Complete)
			r.Delete("/{id}", taskH.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userH.List)
			r.Post("/", userH.Create)
			r.Get("/{id}", userH.Get)
			r.Put("/{id}", userH.Update)
			r.Delete("/{id}", userH.Delete)
		})

		r.Route("/sprints", func(r chi.Router) {
			r.Get("/", sprintH.List)
			r.Post("/", sprintH.Create)
			r.Get("/{id}", sprintH.Get)
			r.Put("/{id}", sprintH.Update)
			r.Delete("/{id}", sprintH.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectH.List)
			r.Post("/", projectH.Create)
			r.Get("/{id}", projectH.Get)
			r.Put("/{id}", projectH.Update)
			r.Delete("/{id}", projectH.Delete)
		})

		r.Get("/kpi", taskH.Summary)

		if hub != nil {
			r.Get("/events", EventsHandler(hub))
		}
	})

	return r
}
