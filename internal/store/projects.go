package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
)

// ProjectRepo provides access to the projects table. The owning user is
// loaded with each project.
type ProjectRepo struct {
	db *sql.DB
}

const projectSelect = `
	SELECT p.project_id, p.name, p.description, p.start_date, p.end_date, p.status, p.deleted,
	       u.user_id, u.first_name, u.last_name, u.email, u.phone, u.password_hash, u.role, u.telegram_username, u.deleted
	FROM projects p
	LEFT JOIN users u ON u.user_id = p.user_id`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	var desc, start, end, status sql.NullString
	var deleted int

	var uID sql.NullInt64
	var uFirst, uLast, uEmail, uPhone, uHash, uRole, uTg sql.NullString
	var uDeleted sql.NullInt64

	err := row.Scan(&p.ID, &p.Name, &desc, &start, &end, &status, &deleted,
		&uID, &uFirst, &uLast, &uEmail, &uPhone, &uHash, &uRole, &uTg, &uDeleted)
	if err != nil {
		return nil, err
	}

	p.Description = desc.String
	p.StartDate = parseDate(start)
	p.EndDate = parseDate(end)
	p.Status = status.String
	p.Deleted = deleted != 0

	if uID.Valid {
		p.Owner = &model.User{
			ID:               uID.Int64,
			FirstName:        uFirst.String,
			LastName:         uLast.String,
			Email:            uEmail.String,
			Phone:            uPhone.String,
			PasswordHash:     uHash.String,
			Role:             uRole.String,
			TelegramUsername: uTg.String,
			Deleted:          uDeleted.Int64 != 0,
		}
	}
	return &p, nil
}

func (r *ProjectRepo) queryProjects(ctx context.Context, where string, args ...any) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// FindAll returns all non-deleted projects ordered by id.
func (r *ProjectRepo) FindAll(ctx context.Context) ([]model.Project, error) {
	return r.queryProjects(ctx, `WHERE p.deleted = 0 ORDER BY p.project_id`)
}

// FindByOwner returns the non-deleted projects a user is responsible for.
func (r *ProjectRepo) FindByOwner(ctx context.Context, userID int64) ([]model.Project, error) {
	return r.queryProjects(ctx, `WHERE p.deleted = 0 AND p.user_id = ? ORDER BY p.project_id`, userID)
}

// FindByStatus returns the non-deleted projects with the given status.
func (r *ProjectRepo) FindByStatus(ctx context.Context, status string) ([]model.Project, error) {
	return r.queryProjects(ctx, `WHERE p.deleted = 0 AND p.status = ? ORDER BY p.project_id`, status)
}

// FindByID returns the project with the given id, or nil if absent or
// deleted.
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	row := r.db.QueryRowContext(ctx, projectSelect+` WHERE p.project_id = ? AND p.deleted = 0`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return p, nil
}

// Create inserts a new project and fills in its assigned id.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	var userID any
	if p.Owner != nil {
		userID = p.Owner.ID
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, start_date, end_date, status, user_id, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		p.Name, p.Description, formatDate(p.StartDate), formatDate(p.EndDate), p.Status, userID)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing project.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	var userID any
	if p.Owner != nil {
		userID = p.Owner.ID
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, status = ?, user_id = ?
		 WHERE project_id = ? AND deleted = 0`,
		p.Name, p.Description, formatDate(p.StartDate), formatDate(p.EndDate), p.Status, userID, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete flags a project as deleted.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE projects SET deleted = 1 WHERE project_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
