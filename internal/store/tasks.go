package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
)

// TaskRepo provides access to the tasks table. Assignee and sprint are
// loaded with each task so the bot can render selections without extra
// round trips.
type TaskRepo struct {
	db *sql.DB
}

const taskSelect = `
	SELECT t.task_id, t.title, t.description, t.status, t.priority, t.type,
	       t.story_points, t.estimated_hours, t.actual_hours,
	       t.start_date, t.end_date, t.deleted,
	       u.user_id, u.first_name, u.last_name, u.email, u.phone, u.password_hash, u.role, u.telegram_username, u.deleted,
	       s.sprint_id, s.name, s.start_date, s.end_date, s.status, s.deleted
	FROM tasks t
	LEFT JOIN users u ON u.user_id = t.user_id
	LEFT JOIN sprints s ON s.sprint_id = t.sprint_id`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var desc, priority, typ, start, end sql.NullString
	var deleted int

	var uID sql.NullInt64
	var uFirst, uLast, uEmail, uPhone, uHash, uRole, uTg sql.NullString
	var uDeleted sql.NullInt64

	var sID sql.NullInt64
	var sName, sStart, sEnd, sStatus sql.NullString
	var sDeleted sql.NullInt64

	err := row.Scan(&t.ID, &t.Title, &desc, &t.Status, &priority, &typ,
		&t.StoryPoints, &t.EstimatedHours, &t.ActualHours,
		&start, &end, &deleted,
		&uID, &uFirst, &uLast, &uEmail, &uPhone, &uHash, &uRole, &uTg, &uDeleted,
		&sID, &sName, &sStart, &sEnd, &sStatus, &sDeleted)
	if err != nil {
		return nil, err
	}

	t.Description = desc.String
	t.Priority = model.Priority(priority.String)
	t.Type = model.TaskType(typ.String)
	t.StartDate = parseDate(start)
	t.EndDate = parseDate(end)
	t.Deleted = deleted != 0

	if uID.Valid {
		t.Assignee = &model.User{
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
	if sID.Valid {
		t.Sprint = &model.Sprint{
			ID:        sID.Int64,
			Name:      sName.String,
			StartDate: parseDate(sStart),
			EndDate:   parseDate(sEnd),
			Status:    sStatus.String,
			Deleted:   sDeleted.Int64 != 0,
		}
	}
	return &t, nil
}

func (r *TaskRepo) queryTasks(ctx context.Context, where string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// FindAll returns all non-deleted tasks ordered by id.
func (r *TaskRepo) FindAll(ctx context.Context) ([]model.Task, error) {
	return r.queryTasks(ctx, `WHERE t.deleted = 0 ORDER BY t.task_id`)
}

// FindByUser returns the non-deleted tasks assigned to a user.
func (r *TaskRepo) FindByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	return r.queryTasks(ctx, `WHERE t.deleted = 0 AND t.user_id = ? ORDER BY t.task_id`, userID)
}

// FindBySprint returns the non-deleted tasks scheduled into a sprint.
func (r *TaskRepo) FindBySprint(ctx context.Context, sprintID int64) ([]model.Task, error) {
	return r.queryTasks(ctx, `WHERE t.deleted = 0 AND t.sprint_id = ? ORDER BY t.task_id`, sprintID)
}

// FindByID returns the task with the given id, or nil if absent or deleted.
func (r *TaskRepo) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+` WHERE t.task_id = ? AND t.deleted = 0`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return t, nil
}

// Create inserts a new task and fills in its assigned id.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	var userID, sprintID any
	if t.Assignee != nil {
		userID = t.Assignee.ID
	}
	if t.Sprint != nil {
		sprintID = t.Sprint.ID
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, type, story_points,
		                    estimated_hours, actual_hours, start_date, end_date, user_id, sprint_id, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.Title, t.Description, string(t.Status), string(t.Priority), string(t.Type), t.StoryPoints,
		t.EstimatedHours, t.ActualHours, formatDate(t.StartDate), formatDate(t.EndDate), userID, sprintID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing task.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	var userID, sprintID any
	if t.Assignee != nil {
		userID = t.Assignee.ID
	}
	if t.Sprint != nil {
		sprintID = t.Sprint.ID
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, type = ?,
		        story_points = ?, estimated_hours = ?, actual_hours = ?,
		        start_date = ?, end_date = ?, user_id = ?, sprint_id = ?
		 WHERE task_id = ? AND deleted = 0`,
		t.Title, t.Description, string(t.Status), string(t.Priority), string(t.Type),
		t.StoryPoints, t.EstimatedHours, t.ActualHours,
		formatDate(t.StartDate), formatDate(t.EndDate), userID, sprintID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete flags a task as deleted.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET deleted = 1 WHERE task_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
