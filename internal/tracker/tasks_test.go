package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/store"
)

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.events = append(p.events, ev)
}

func newTestServices(t *testing.T) (*TaskService, *UserService, *SprintService, *recordingPublisher) {
	t.Helper()
	db, err := store.NewMemoryStore()
	if err != nil {
		t.Fatalf("failed to open memory store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pub := &recordingPublisher{}
	return NewTaskService(db.Tasks(), db.Users(), db.Sprints(), pub),
		NewUserService(db.Users()),
		NewSprintService(db.Sprints()),
		pub
}

func seedDirectory(t *testing.T, users *UserService, sprints *SprintService) (*model.User, *model.Sprint) {
	t.Helper()
	ctx := context.Background()

	u, err := users.Create(ctx, &model.User{
		FirstName:        "Ana",
		LastName:         "Lopez",
		Email:            "ana@example.com",
		TelegramUsername: "analopez",
	}, "secret")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	sp, err := sprints.Create(ctx, &model.Sprint{Name: "Alpha"})
	if err != nil {
		t.Fatalf("failed to create sprint: %v", err)
	}
	return u, sp
}

func TestTaskCreateValidation(t *testing.T) {
	tasks, users, sprints, _ := newTestServices(t)
	u, sp := seedDirectory(t, users, sprints)
	ctx := context.Background()

	tests := []struct {
		name string
		task *model.Task
	}{
		{"missing title", &model.Task{Assignee: u, Sprint: sp}},
		{"missing assignee", &model.Task{Title: "T", Sprint: sp}},
		{"missing sprint", &model.Task{Title: "T", Assignee: u}},
		{"unknown assignee", &model.Task{Title: "T", Assignee: &model.User{ID: 999}, Sprint: sp}},
		{"unknown sprint", &model.Task{Title: "T", Assignee: u, Sprint: &model.Sprint{ID: 999}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tasks.Create(ctx, tt.task); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTaskCreateDefaultsAndEvent(t *testing.T) {
	tasks, users, sprints, pub := newTestServices(t)
	u, sp := seedDirectory(t, users, sprints)
	ctx := context.Background()

	created, err := tasks.Create(ctx, &model.Task{Title: "Fix login", Assignee: u, Sprint: sp})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == 0 {
		t.Error("no id assigned")
	}
	if created.Status != model.StatusPending {
		t.Errorf("status = %s", created.Status)
	}
	if created.StartDate.IsZero() || created.EndDate.IsZero() {
		t.Error("date defaults not applied")
	}
	if !created.EndDate.After(created.StartDate) {
		t.Error("end date not after start date")
	}

	if len(pub.events) != 1 || pub.events[0].Type != EventTaskCreated {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestTaskCompleteOwnership(t *testing.T) {
	tasks, users, sprints, pub := newTestServices(t)
	u, sp := seedDirectory(t, users, sprints)
	ctx := context.Background()

	created, err := tasks.Create(ctx, &model.Task{Title: "Fix login", Assignee: u, Sprint: sp})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := tasks.Complete(ctx, created.ID, u.ID+1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	done, err := tasks.Complete(ctx, created.ID, u.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.StatusCompleted {
		t.Errorf("status = %s", done.Status)
	}

	// callerID 0 skips the ownership check.
	if _, err := tasks.Complete(ctx, created.ID, 0); err != nil {
		t.Errorf("unrestricted complete failed: %v", err)
	}

	var completions int
	for _, ev := range pub.events {
		if ev.Type == EventTaskCompleted {
			completions++
		}
	}
	if completions != 2 {
		t.Errorf("completion events = %d", completions)
	}
}

func TestTaskCompleteMissing(t *testing.T) {
	tasks, _, _, _ := newTestServices(t)
	if _, err := tasks.Complete(context.Background(), 42, 0); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestSummary(t *testing.T) {
	tasks, users, sprints, _ := newTestServices(t)
	u, sp := seedDirectory(t, users, sprints)
	ctx := context.Background()

	sp2, err := sprints.Create(ctx, &model.Sprint{Name: "Beta"})
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}

	mk := func(title string, sprint *model.Sprint, points int, est float64) *model.Task {
		created, err := tasks.Create(ctx, &model.Task{
			Title: title, Assignee: u, Sprint: sprint,
			StoryPoints: points, EstimatedHours: est,
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return created
	}

	a := mk("A", sp, 5, 4)
	mk("B", sp, 3, 2)
	mk("C", sp2, 8, 10)
	if _, err := tasks.Complete(ctx, a.ID, 0); err != nil {
		t.Fatalf("complete: %v", err)
	}

	summary, err := tasks.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if summary.TotalTasks != 3 || summary.Completed != 1 || summary.Pending != 2 {
		t.Errorf("counts = %+v", summary)
	}
	if summary.TotalStoryPoints != 16 || summary.CompletedStoryPoints != 5 {
		t.Errorf("points = %d/%d", summary.CompletedStoryPoints, summary.TotalStoryPoints)
	}
	if summary.EstimatedHours != 16 {
		t.Errorf("estimated hours = %v", summary.EstimatedHours)
	}
	if got := summary.CompletionRate; got < 0.33 || got > 0.34 {
		t.Errorf("completion rate = %v", got)
	}

	if len(summary.BySprint) != 2 {
		t.Fatalf("sprints in summary = %d", len(summary.BySprint))
	}
	alpha := summary.BySprint[0]
	if alpha.SprintName != "Alpha" || alpha.Total != 2 || alpha.Completed != 1 {
		t.Errorf("alpha = %+v", alpha)
	}
}

func TestSummaryEmpty(t *testing.T) {
	tasks, _, _, _ := newTestServices(t)
	summary, err := tasks.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalTasks != 0 || summary.CompletionRate != 0 {
		t.Errorf("got %+v", summary)
	}
}
