package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/teamflow/sprintbot/internal/extraction"
	"github.com/teamflow/sprintbot/internal/model"
)

func voiceHandler(tasks *fakeTasks, ex *fakeExtractor) (*Handler, *fakeTransport) {
	tr := &fakeTransport{files: map[string][]byte{"voice-1": []byte("OGGDATA")}}
	users := &fakeUsers{users: testUsers()}
	sprints := &fakeSprints{sprints: testSprints()}
	return newTestHandler(tr, users, sprints, tasks, ex), tr
}

func waitingAudio(h *Handler, chatID string) *Session {
	s := loggedIn(h, chatID)
	s.State = StateWaitingAudio
	return s
}

func TestVoiceCreatesTask(t *testing.T) {
	tasks := &fakeTasks{}
	ex := &fakeExtractor{projection: extraction.Projection{
		"title":           "Fix audio glitch",
		"description":     "Crackling on playback",
		"priority":        "High",
		"type":            "Bug",
		"story_points":    float64(5),
		"estimated_hours": float64(6),
		"user_id":         float64(2),
		"sprint_id":       float64(11),
	}}
	h, tr := voiceHandler(tasks, ex)
	s := waitingAudio(h, "100")

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	if len(tasks.created) != 1 {
		t.Fatalf("created %d tasks", len(tasks.created))
	}
	created := tasks.created[0]
	if created.Title != "Fix audio glitch" || created.Priority != model.PriorityHigh {
		t.Errorf("task = %+v", created)
	}
	if created.StoryPoints != 5 || created.EstimatedHours != 6 {
		t.Errorf("estimation = %d/%v", created.StoryPoints, created.EstimatedHours)
	}
	if created.Assignee == nil || created.Assignee.ID != 2 {
		t.Errorf("assignee = %+v", created.Assignee)
	}
	if created.Sprint == nil || created.Sprint.ID != 11 {
		t.Errorf("sprint = %+v", created.Sprint)
	}

	if string(ex.gotAudio) != "OGGDATA" {
		t.Error("audio bytes not forwarded")
	}
	if len(ex.gotCtx.Usuarios) != 2 || len(ex.gotCtx.Sprints) != 2 {
		t.Errorf("context = %+v", ex.gotCtx)
	}

	if s.State != StateNone {
		t.Errorf("state = %s, want none", s.State)
	}
	texts := tr.texts()
	if texts[0] != MsgVoiceWorking {
		t.Errorf("first message = %q", texts[0])
	}
	if tr.lastText() != MsgMainMenu {
		t.Errorf("last message = %q", tr.lastText())
	}
}

func TestVoiceFallsBackToFirstDirectoryEntries(t *testing.T) {
	tasks := &fakeTasks{}
	// No user or sprint references at all.
	ex := &fakeExtractor{projection: extraction.Projection{"title": "Spoken task"}}
	h, _ := voiceHandler(tasks, ex)
	waitingAudio(h, "100")

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	created := tasks.created[0]
	if created.Assignee == nil || created.Assignee.ID != 1 {
		t.Errorf("assignee = %+v, want first user", created.Assignee)
	}
	if created.Sprint == nil || created.Sprint.ID != 10 {
		t.Errorf("sprint = %+v, want first sprint", created.Sprint)
	}
	// Unset fields keep draft defaults.
	if created.Status != model.StatusPending {
		t.Errorf("status = %s", created.Status)
	}
	if created.EndDate.IsZero() {
		t.Error("end date default missing")
	}
}

func TestVoiceUnresolvedReferenceFallsBack(t *testing.T) {
	tasks := &fakeTasks{}
	ex := &fakeExtractor{projection: extraction.Projection{
		"title":     "Spoken task",
		"user_id":   float64(999),
		"sprint_id": float64(999),
	}}
	h, _ := voiceHandler(tasks, ex)
	waitingAudio(h, "100")

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	created := tasks.created[0]
	if created.Assignee == nil || created.Assignee.ID != 1 {
		t.Errorf("assignee = %+v", created.Assignee)
	}
	if created.Sprint == nil || created.Sprint.ID != 10 {
		t.Errorf("sprint = %+v", created.Sprint)
	}
}

func TestVoiceExtractionFailureResetsState(t *testing.T) {
	tasks := &fakeTasks{}
	ex := &fakeExtractor{err: errTest}
	h, tr := voiceHandler(tasks, ex)
	s := waitingAudio(h, "100")

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	if len(tasks.created) != 0 {
		t.Error("task created despite extraction failure")
	}
	if s.State != StateNone {
		t.Errorf("state = %s, want none", s.State)
	}
	texts := tr.texts()
	if texts[len(texts)-2] != MsgVoiceFailed {
		t.Errorf("got %q", texts[len(texts)-2])
	}
	if tr.lastText() != MsgMainMenu {
		t.Errorf("menu not restored: %q", tr.lastText())
	}
}

func TestVoiceDroppedOutsideAudioState(t *testing.T) {
	tasks := &fakeTasks{}
	ex := &fakeExtractor{projection: extraction.Projection{"title": "x"}}
	h, tr := voiceHandler(tasks, ex)
	loggedIn(h, "100") // authenticated but not waiting for audio

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	if len(tasks.created) != 0 || len(tr.sent) != 0 {
		t.Errorf("voice note outside audio state was processed: %v", tr.texts())
	}
}

func TestVoiceWarningsAreForwarded(t *testing.T) {
	tasks := &fakeTasks{}
	ex := &fakeExtractor{projection: extraction.Projection{
		"title":    "Spoken task",
		"warnings": []any{"could not hear the sprint name"},
	}}
	h, tr := voiceHandler(tasks, ex)
	waitingAudio(h, "100")

	h.HandleVoice(context.Background(), "100", "analopez", "voice-1")

	found := false
	for _, text := range tr.texts() {
		if strings.Contains(text, "could not hear the sprint name") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings missing from replies: %v", tr.texts())
	}
}
