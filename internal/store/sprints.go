package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
)

// SprintRepo provides access to the sprints table. The owning project is
// loaded with each sprint.
type SprintRepo struct {
	db *sql.DB
}

const sprintSelect = `
	SELECT s.sprint_id, s.name, s.start_date, s.end_date, s.status, s.deleted,
	       p.project_id, p.name, p.description, p.start_date, p.end_date, p.status, p.deleted
	FROM sprints s
	LEFT JOIN projects p ON p.project_id = s.project_id`

func scanSprint(row interface{ Scan(...any) error }) (*model.Sprint, error) {
	var s model.Sprint
	var start, end, status sql.NullString
	var deleted int

	var pID sql.NullInt64
	var pName, pDesc, pStart, pEnd, pStatus sql.NullString
	var pDeleted sql.NullInt64

	err := row.Scan(&s.ID, &s.Name, &start, &end, &status, &deleted,
		&pID, &pName, &pDesc, &pStart, &pEnd, &pStatus, &pDeleted)
	if err != nil {
		return nil, err
	}

	s.StartDate = parseDate(start)
	s.EndDate = parseDate(end)
	s.Status = status.String
	s.Deleted = deleted != 0

	if pID.Valid {
		s.Project = &model.Project{
			ID:          pID.Int64,
			Name:        pName.String,
			Description: pDesc.String,
			StartDate:   parseDate(pStart),
			EndDate:     parseDate(pEnd),
			Status:      pStatus.String,
			Deleted:     pDeleted.Int64 != 0,
		}
	}
	return &s, nil
}

func (r *SprintRepo) querySprints(ctx context.Context, where string, args ...any) ([]model.Sprint, error) {
	rows, err := r.db.QueryContext(ctx, sprintSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sprints []model.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		sprints = append(sprints, *s)
	}
	return sprints, rows.Err()
}

// FindAll returns all non-deleted sprints ordered by id.
func (r *SprintRepo) FindAll(ctx context.Context) ([]model.Sprint, error) {
	return r.querySprints(ctx, `WHERE s.deleted = 0 ORDER BY s.sprint_id`)
}

// FindByProject returns the non-deleted sprints belonging to a project.
func (r *SprintRepo) FindByProject(ctx context.Context, projectID int64) ([]model.Sprint, error) {
	return r.querySprints(ctx, `WHERE s.deleted = 0 AND s.project_id = ? ORDER BY s.sprint_id`, projectID)
}

// FindByID returns the sprint with the given id, or nil if absent or deleted.
func (r *SprintRepo) FindByID(ctx context.Context, id int64) (*model.Sprint, error) {
	row := r.db.QueryRowContext(ctx, sprintSelect+` WHERE s.sprint_id = ? AND s.deleted = 0`, id)
	s, err := scanSprint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sprint: %w", err)
	}
	return s, nil
}

// Create inserts a new sprint and fills in its assigned id.
func (r *SprintRepo) Create(ctx context.Context, s *model.Sprint) error {
	var projectID any
	if s.Project != nil {
		projectID = s.Project.ID
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sprints (name, start_date, end_date, status, project_id, deleted) VALUES (?, ?, ?, ?, ?, 0)`,
		s.Name, formatDate(s.StartDate), formatDate(s.EndDate), s.Status, projectID)
	if err != nil {
		return fmt.Errorf("failed to insert sprint: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read sprint id: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing sprint.
func (r *SprintRepo) Update(ctx context.Context, s *model.Sprint) error {
	var projectID any
	if s.Project != nil {
		projectID = s.Project.ID
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE sprints SET name = ?, start_date = ?, end_date = ?, status = ?, project_id = ?
		 WHERE sprint_id = ? AND deleted = 0`,
		s.Name, formatDate(s.StartDate), formatDate(s.EndDate), s.Status, projectID, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update sprint: %w", err)
	}
	return nil
}

// Delete flags a sprint as deleted.
func (r *SprintRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sprints SET deleted = 1 WHERE sprint_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sprint: %w", err)
	}
	return nil
}
