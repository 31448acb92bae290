package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/teamflow/sprintbot/internal/model"
)

func TestLoginFlow(t *testing.T) {
	tr := &fakeTransport{}
	users := &fakeUsers{users: testUsers(), passwords: map[string]string{"ana@example.com": "secret"}}
	h := newTestHandler(tr, users, &fakeSprints{sprints: testSprints()}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	h.HandleText(ctx, "100", "analopez", "/login")
	if tr.lastText() != MsgEnterPassword {
		t.Fatalf("expected password prompt, got %q", tr.lastText())
	}

	h.HandleText(ctx, "100", "analopez", "wrong")
	if tr.lastText() != MsgIncorrectPassword {
		t.Fatalf("expected retry, got %q", tr.lastText())
	}

	// Still in the password state, a second attempt works.
	h.HandleText(ctx, "100", "analopez", "secret")
	s := h.sessions.GetOrCreate("100")
	if !s.Authenticated || s.AuthenticatedUser == nil || s.AuthenticatedUser.ID != 1 {
		t.Fatalf("session not authenticated: %+v", s)
	}
	if s.State != StateNone {
		t.Errorf("state = %s, want none", s.State)
	}

	texts := tr.texts()
	welcome := texts[len(texts)-2]
	if !strings.Contains(welcome, "successful") || !strings.Contains(welcome, "Ana") {
		t.Errorf("welcome message = %q", welcome)
	}
	if tr.lastText() != MsgMainMenu {
		t.Errorf("expected menu after login, got %q", tr.lastText())
	}
}

func TestLoginUnknownUsername(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{users: testUsers()}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	h.HandleText(ctx, "100", "stranger", "/login")
	h.HandleText(ctx, "100", "stranger", "anything")

	if tr.lastText() != MsgUserNotRegistered {
		t.Fatalf("got %q", tr.lastText())
	}
	s := h.sessions.GetOrCreate("100")
	if s.State != StateNone || s.Authenticated {
		t.Errorf("expected idle unauthenticated session, state=%s", s.State)
	}
}

func TestLoginLookupFailure(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{lookupErr: errTest}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	h.HandleText(ctx, "100", "analopez", "/login")
	h.HandleText(ctx, "100", "analopez", "secret")

	// A directory failure is not the same as an unknown user.
	if tr.lastText() != MsgLoginUnavailable {
		t.Fatalf("got %q", tr.lastText())
	}
	s := h.sessions.GetOrCreate("100")
	if s.State != StateNone || s.Authenticated {
		t.Errorf("expected idle unauthenticated session, state=%s", s.State)
	}
}

func TestLoginBackendFailure(t *testing.T) {
	tr := &fakeTransport{}
	users := &fakeUsers{users: testUsers(), authErr: errTest}
	h := newTestHandler(tr, users, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	h.HandleText(ctx, "100", "analopez", "/login")
	h.HandleText(ctx, "100", "analopez", "secret")

	// A backend failure is not a credential rejection.
	if tr.lastText() != MsgLoginUnavailable {
		t.Fatalf("got %q", tr.lastText())
	}
	s := h.sessions.GetOrCreate("100")
	if s.State != StateWaitingPassword {
		t.Errorf("state = %s, want waiting password", s.State)
	}
	if s.Authenticated {
		t.Error("session authenticated despite failure")
	}
}

func TestLogout(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{users: testUsers()}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	h.HandleText(ctx, "100", "analopez", "/logout")
	if tr.lastText() != MsgNotLoggedIn {
		t.Fatalf("got %q", tr.lastText())
	}

	loggedIn(h, "100")
	h.HandleText(ctx, "100", "analopez", "/logout")
	if tr.lastText() != MsgLoggedOut {
		t.Fatalf("got %q", tr.lastText())
	}
	if h.sessions.GetOrCreate("100").Authenticated {
		t.Error("session still authenticated")
	}
}

func TestAuthGuards(t *testing.T) {
	guarded := []string{
		LabelCreateTask, LabelListTasks, LabelFinishTask, LabelVoiceTask,
		LabelKPIs, LabelPrevPage, LabelNextPage, LabelFilterHigh,
	}

	for _, text := range guarded {
		t.Run(text, func(t *testing.T) {
			tr := &fakeTransport{}
			h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})
			h.HandleText(context.Background(), "100", "x", text)
			if tr.lastText() != MsgLoginRequired {
				t.Errorf("got %q, want login gate", tr.lastText())
			}
		})
	}
}

func TestStartShowsMenuAndResetsState(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{users: testUsers()}, &fakeSprints{sprints: testSprints()}, &fakeTasks{}, &fakeExtractor{})
	ctx := context.Background()

	s := loggedIn(h, "100")
	h.HandleText(ctx, "100", "analopez", LabelCreateTask)
	if s.State != StateWaitingTitle {
		t.Fatalf("wizard did not start: %s", s.State)
	}

	// /start interrupts the wizard.
	h.HandleText(ctx, "100", "analopez", "/start")
	if s.State != StateNone {
		t.Errorf("state = %s, want none", s.State)
	}
	if tr.lastText() != MsgMainMenu {
		t.Errorf("got %q", tr.lastText())
	}
}

func TestUnmatchedTextInIdleStateIsDropped(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})

	h.HandleText(context.Background(), "100", "x", "hello there")
	if len(tr.sent) != 0 {
		t.Errorf("expected silence, got %v", tr.texts())
	}
}

func TestFinishTaskFlow(t *testing.T) {
	tasks := &fakeTasks{listed: []model.Task{
		{ID: 1, Title: "Fix login", Status: model.StatusPending},
		{ID: 2, Title: "Old thing", Status: model.StatusCompleted},
		{ID: 3, Title: "Write docs", Status: model.StatusInProgress},
	}}
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{users: testUsers()}, &fakeSprints{}, tasks, &fakeExtractor{})
	ctx := context.Background()
	s := loggedIn(h, "100")

	h.HandleText(ctx, "100", "analopez", LabelFinishTask)
	if s.State != StateWaitingFinishTask {
		t.Fatalf("state = %s", s.State)
	}
	offer := tr.sent[len(tr.sent)-1]
	if offer.text != MsgSelectTaskToFinish {
		t.Fatalf("got %q", offer.text)
	}
	// Completed tasks are not offered.
	if len(offer.rows) != 2 {
		t.Fatalf("offered %d rows, want 2", len(offer.rows))
	}

	h.HandleText(ctx, "100", "analopez", "nonsense")
	if tr.lastText() != MsgInvalidFinishTask {
		t.Fatalf("got %q", tr.lastText())
	}
	if s.State != StateWaitingFinishTask {
		t.Fatalf("state moved to %s", s.State)
	}

	h.HandleText(ctx, "100", "analopez", "#3 Write docs")
	if len(tasks.completed) != 1 || tasks.completed[0] != 3 {
		t.Fatalf("completed = %v", tasks.completed)
	}
	if s.State != StateNone {
		t.Errorf("state = %s, want none", s.State)
	}
}

func TestFinishTaskNoOpenTasks(t *testing.T) {
	tasks := &fakeTasks{listed: []model.Task{
		{ID: 2, Title: "Old thing", Status: model.StatusCompleted},
	}}
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, tasks, &fakeExtractor{})
	s := loggedIn(h, "100")

	h.HandleText(context.Background(), "100", "analopez", LabelFinishTask)
	if tr.lastText() != MsgNoOpenTasks {
		t.Fatalf("got %q", tr.lastText())
	}
	if s.State != StateNone {
		t.Errorf("state = %s", s.State)
	}
}

func TestListTasksServiceFailure(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, &fakeTasks{listErr: errTest}, &fakeExtractor{})
	s := loggedIn(h, "100")

	h.HandleText(context.Background(), "100", "analopez", LabelListTasks)
	// A service failure must not read like an empty list.
	if tr.lastText() != MsgTasksUnavailable {
		t.Fatalf("got %q", tr.lastText())
	}
	if len(s.CurrentTasks) != 0 {
		t.Errorf("cursor populated on failure: %d tasks", len(s.CurrentTasks))
	}
}

func TestFinishTaskServiceFailure(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, &fakeTasks{listErr: errTest}, &fakeExtractor{})
	s := loggedIn(h, "100")

	h.HandleText(context.Background(), "100", "analopez", LabelFinishTask)
	if tr.lastText() != MsgTasksUnavailable {
		t.Fatalf("got %q", tr.lastText())
	}
	if s.State != StateNone {
		t.Errorf("state = %s", s.State)
	}
}

func TestKPICommand(t *testing.T) {
	tasks := &fakeTasks{summary: &model.KPISummary{
		TotalTasks: 4, Completed: 2, CompletionRate: 0.5,
	}}
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, tasks, &fakeExtractor{})
	loggedIn(h, "100")

	h.HandleText(context.Background(), "100", "analopez", LabelKPIs)
	texts := tr.texts()
	report := texts[len(texts)-2]
	if !strings.Contains(report, "4 total") || !strings.Contains(report, "50%") {
		t.Errorf("report = %q", report)
	}
}

func TestHideKeyboard(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, &fakeTasks{}, &fakeExtractor{})

	h.HandleText(context.Background(), "100", "x", LabelHideKeyboard)
	last := tr.sent[len(tr.sent)-1]
	if last.text != MsgBye || !last.removeKeyboard {
		t.Errorf("got %+v", last)
	}
}

func TestPriorityFilter(t *testing.T) {
	tasks := &fakeTasks{listed: []model.Task{
		{ID: 1, Title: "A", Priority: model.PriorityHigh, Status: model.StatusPending},
		{ID: 2, Title: "B", Priority: model.PriorityLow, Status: model.StatusPending},
		{ID: 3, Title: "C", Priority: model.PriorityHigh, Status: model.StatusPending},
	}}
	tr := &fakeTransport{}
	h := newTestHandler(tr, &fakeUsers{}, &fakeSprints{}, tasks, &fakeExtractor{})
	s := loggedIn(h, "100")

	h.HandleText(context.Background(), "100", "analopez", LabelFilterHigh)
	if len(s.CurrentTasks) != 2 {
		t.Fatalf("filtered cursor has %d tasks, want 2", len(s.CurrentTasks))
	}
	page := tr.lastText()
	if !strings.Contains(page, "#1 A") || !strings.Contains(page, "#3 C") || strings.Contains(page, "#2 B") {
		t.Errorf("page = %q", page)
	}
}
