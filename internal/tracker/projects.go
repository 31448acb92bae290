package tracker

import (
	"context"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/store"
)

// ProjectService manages projects.
type ProjectService struct {
	repo *store.ProjectRepo
}

// NewProjectService creates a project service over the given repository.
func NewProjectService(repo *store.ProjectRepo) *ProjectService {
	return &ProjectService{repo: repo}
}

// FindAll returns all projects.
func (s *ProjectService) FindAll(ctx context.Context) ([]model.Project, error) {
	return s.repo.FindAll(ctx)
}

// FindByID returns a project by id, or nil when absent.
func (s *ProjectService) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByOwner returns the projects a user is responsible for.
func (s *ProjectService) FindByOwner(ctx context.Context, userID int64) ([]model.Project, error) {
	return s.repo.FindByOwner(ctx, userID)
}

// FindByStatus returns the projects with the given status.
func (s *ProjectService) FindByStatus(ctx context.Context, status string) ([]model.Project, error) {
	return s.repo.FindByStatus(ctx, status)
}

// Create registers a new project.
func (s *ProjectService) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	if project.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Update rewrites an existing project.
func (s *ProjectService) Update(ctx context.Context, project *model.Project) (*model.Project, error) {
	existing, err := s.repo.FindByID(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("project %d not found", project.ID)
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete logically deletes a project.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
