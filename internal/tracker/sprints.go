package tracker

import (
	"context"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/store"
)

// SprintService manages sprints.
type SprintService struct {
	repo *store.SprintRepo
}

// NewSprintService creates a sprint service over the given repository.
func NewSprintService(repo *store.SprintRepo) *SprintService {
	return &SprintService{repo: repo}
}

// FindAll returns all sprints.
func (s *SprintService) FindAll(ctx context.Context) ([]model.Sprint, error) {
	return s.repo.FindAll(ctx)
}

// FindByID returns a sprint by id, or nil when absent.
func (s *SprintService) FindByID(ctx context.Context, id int64) (*model.Sprint, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByProject returns the sprints belonging to a project.
func (s *SprintService) FindByProject(ctx context.Context, projectID int64) ([]model.Sprint, error) {
	return s.repo.FindByProject(ctx, projectID)
}

// Create registers a new sprint.
func (s *SprintService) Create(ctx context.Context, sprint *model.Sprint) (*model.Sprint, error) {
	if sprint.Name == "" {
		return nil, fmt.Errorf("sprint name is required")
	}
	if err := s.repo.Create(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

// Update rewrites an existing sprint.
func (s *SprintService) Update(ctx context.Context, sprint *model.Sprint) (*model.Sprint, error) {
	existing, err := s.repo.FindByID(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("sprint %d not found", sprint.ID)
	}
	if err := s.repo.Update(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

// Delete logically deletes a sprint.
func (s *SprintService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
