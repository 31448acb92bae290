package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/store"
)

// ErrNotOwner is returned when a caller tries to complete a task assigned
// to someone else.
var ErrNotOwner = fmt.Errorf("task not assigned to caller")

// TaskService manages tasks. A task is only durably created once its
// assignee and sprint resolve to existing, non-deleted entities.
type TaskService struct {
	tasks   *store.TaskRepo
	users   *store.UserRepo
	sprints *store.SprintRepo
	events  Publisher
}

// NewTaskService creates a task service over the given repositories.
// events may be nil when no subscriber is wired.
func NewTaskService(tasks *store.TaskRepo, users *store.UserRepo, sprints *store.SprintRepo, events Publisher) *TaskService {
	return &TaskService{tasks: tasks, users: users, sprints: sprints, events: events}
}

// Create validates and persists a new task.
func (s *TaskService) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if task.Assignee == nil {
		return nil, fmt.Errorf("task assignee is required")
	}
	if task.Sprint == nil {
		return nil, fmt.Errorf("task sprint is required")
	}

	assignee, err := s.users.FindByID(ctx, task.Assignee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignee: %w", err)
	}
	if assignee == nil {
		return nil, fmt.Errorf("assignee %d not found", task.Assignee.ID)
	}

	sprint, err := s.sprints.FindByID(ctx, task.Sprint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sprint: %w", err)
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d not found", task.Sprint.ID)
	}

	task.Assignee = assignee
	task.Sprint = sprint
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	task.ApplyDateDefaults(time.Now())

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventTaskCreated, Task: task, At: time.Now()})
	return task, nil
}

// Complete marks a task as completed. callerID must match the task's
// assignee; pass 0 to skip the ownership check (API callers).
func (s *TaskService) Complete(ctx context.Context, id, callerID int64) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d not found", id)
	}
	if callerID != 0 && (task.Assignee == nil || task.Assignee.ID != callerID) {
		return nil, ErrNotOwner
	}

	task.Status = model.StatusCompleted
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventTaskCompleted, Task: task, At: time.Now()})
	return task, nil
}

// FindAll returns all tasks.
func (s *TaskService) FindAll(ctx context.Context) ([]model.Task, error) {
	return s.tasks.FindAll(ctx)
}

// FindByID returns a task by id, or nil when absent.
func (s *TaskService) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// ListByUser returns the tasks assigned to a user.
func (s *TaskService) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.tasks.FindByUser(ctx, userID)
}

// ListBySprint returns the tasks scheduled into a sprint.
func (s *TaskService) ListBySprint(ctx context.Context, sprintID int64) ([]model.Task, error) {
	return s.tasks.FindBySprint(ctx, sprintID)
}

// Update rewrites an existing task.
func (s *TaskService) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	existing, err := s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("task %d not found", task.ID)
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete logically deletes a task.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.tasks.Delete(ctx, id)
}

// Summary computes the aggregate KPI metrics across all tasks.
func (s *TaskService) Summary(ctx context.Context) (*model.KPISummary, error) {
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.KPISummary{}
	bySprint := make(map[int64]*model.SprintKPI)

	for i := range tasks {
		t := &tasks[i]
		summary.TotalTasks++
		summary.TotalStoryPoints += t.StoryPoints
		summary.EstimatedHours += t.EstimatedHours
		summary.ActualHours += t.ActualHours

		switch t.Status {
		case model.StatusCompleted:
			summary.Completed++
			summary.CompletedStoryPoints += t.StoryPoints
		case model.StatusInProgress:
			summary.InProgress++
		default:
			summary.Pending++
		}

		if t.Sprint != nil {
			kpi, ok := bySprint[t.Sprint.ID]
			if !ok {
				kpi = &model.SprintKPI{SprintID: t.Sprint.ID, SprintName: t.Sprint.Name}
				bySprint[t.Sprint.ID] = kpi
			}
			kpi.Total++
			if t.Status == model.StatusCompleted {
				kpi.Completed++
			}
		}
	}

	if summary.TotalTasks > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.TotalTasks)
	}

	// Emit the per-sprint breakdown in first-seen task order.
	seen := make(map[int64]bool)
	for _, t := range tasks {
		if t.Sprint == nil || seen[t.Sprint.ID] {
			continue
		}
		seen[t.Sprint.ID] = true
		summary.BySprint = append(summary.BySprint, *bySprint[t.Sprint.ID])
	}

	return summary, nil
}

func (s *TaskService) publish(ev Event) {
	if s.events != nil {
		s.events.Publish(ev)
	}
}
