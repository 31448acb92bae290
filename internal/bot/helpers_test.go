package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamflow/sprintbot/internal/extraction"
	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/tracker"
)

var errTest = errors.New("boom")

type sentMessage struct {
	text           string
	rows           [][]string
	oneTime        bool
	removeKeyboard bool
}

// fakeTransport records outbound messages. When maxTextLen is set, any
// message longer than it is rejected with ErrMessageTooLong, mimicking the
// platform's size limit.
type fakeTransport struct {
	sent       []sentMessage
	maxTextLen int
	files      map[string][]byte
	fileErr    error
}

func (t *fakeTransport) send(msg sentMessage) error {
	if t.maxTextLen > 0 && len(msg.text) > t.maxTextLen {
		return ErrMessageTooLong
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *fakeTransport) SendText(_ context.Context, _, text string) error {
	return t.send(sentMessage{text: text})
}

func (t *fakeTransport) SendKeyboard(_ context.Context, _, text string, rows [][]string, oneTime bool) error {
	return t.send(sentMessage{text: text, rows: rows, oneTime: oneTime})
}

func (t *fakeTransport) SendTextRemoveKeyboard(_ context.Context, _, text string) error {
	return t.send(sentMessage{text: text, removeKeyboard: true})
}

func (t *fakeTransport) ResolveFile(_ context.Context, fileID string) ([]byte, error) {
	if t.fileErr != nil {
		return nil, t.fileErr
	}
	return t.files[fileID], nil
}

func (t *fakeTransport) lastText() string {
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1].text
}

func (t *fakeTransport) texts() []string {
	out := make([]string, 0, len(t.sent))
	for _, m := range t.sent {
		out = append(out, m.text)
	}
	return out
}

type fakeUsers struct {
	users     []model.User
	passwords map[string]string // email -> password
	findErr   error
	lookupErr error
	authErr   error
}

func (f *fakeUsers) FindAll(context.Context) ([]model.User, error) {
	return f.users, f.findErr
}

func (f *fakeUsers) FindByTelegramUsername(_ context.Context, username string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for i := range f.users {
		if f.users[i].TelegramUsername == username {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	for i := range f.users {
		if f.users[i].Email == email && f.passwords[email] == password {
			return &f.users[i], nil
		}
	}
	return nil, tracker.ErrInvalidCredentials
}

type fakeSprints struct {
	sprints []model.Sprint
	findErr error
}

func (f *fakeSprints) FindAll(context.Context) ([]model.Sprint, error) {
	return f.sprints, f.findErr
}

type fakeTasks struct {
	created   []*model.Task
	completed []int64
	listed    []model.Task
	summary   *model.KPISummary
	createErr error
	listErr   error
	nextID    int64
}

func (f *fakeTasks) Create(_ context.Context, task *model.Task) (*model.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	out := *task
	out.ID = f.nextID
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeTasks) Complete(_ context.Context, id, _ int64) (*model.Task, error) {
	f.completed = append(f.completed, id)
	for i := range f.listed {
		if f.listed[i].ID == id {
			done := f.listed[i]
			done.Status = model.StatusCompleted
			return &done, nil
		}
	}
	return nil, fmt.Errorf("task %d not found", id)
}

func (f *fakeTasks) ListByUser(context.Context, int64) ([]model.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *fakeTasks) Summary(context.Context) (*model.KPISummary, error) {
	if f.summary == nil {
		return &model.KPISummary{}, nil
	}
	return f.summary, nil
}

type fakeExtractor struct {
	projection extraction.Projection
	err        error
	gotCtx     extraction.Context
	gotAudio   []byte
}

func (f *fakeExtractor) Extract(_ context.Context, audio []byte, refCtx extraction.Context) (extraction.Projection, error) {
	f.gotAudio = audio
	f.gotCtx = refCtx
	return f.projection, f.err
}

func testUsers() []model.User {
	return []model.User{
		{ID: 1, FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", TelegramUsername: "analopez"},
		{ID: 2, FirstName: "Bruno", LastName: "Diaz", Email: "bruno@example.com", TelegramUsername: "brunod"},
	}
}

func testSprints() []model.Sprint {
	return []model.Sprint{
		{ID: 10, Name: "Alpha"},
		{ID: 11, Name: "Beta"},
	}
}

func newTestHandler(tr *fakeTransport, users *fakeUsers, sprints *fakeSprints, tasks *fakeTasks, ex *fakeExtractor) *Handler {
	if tr.files == nil {
		tr.files = map[string][]byte{}
	}
	return NewHandler(tr, users, sprints, tasks, ex)
}

// loggedIn shortcuts a session into the authenticated state.
func loggedIn(h *Handler, chatID string) *Session {
	s := h.sessions.GetOrCreate(chatID)
	u := testUsers()[0]
	s.Authenticated = true
	s.AuthenticatedUser = &u
	return s
}
