package bot

import (
	"context"
	"log/slog"

	"github.com/teamflow/sprintbot/internal/extraction"
	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/model"
)

// HandleVoice processes one inbound voice note. Voice notes are only
// meaningful while the chat is waiting for audio; anything else is
// dropped. Whatever happens during extraction, the session always leaves
// the audio state and gets the menu back.
func (h *Handler) HandleVoice(ctx context.Context, chatID, username, fileID string) {
	s := h.sessions.GetOrCreate(chatID)
	s.Lock()
	defer s.Unlock()
	s.Username = username

	if s.State != StateWaitingAudio {
		h.log.Debug("Dropping voice note outside audio state",
			slog.String("chat_id", chatID),
			slog.String("state", s.State.String()))
		return
	}

	defer func() {
		s.State = StateNone
		h.sendReplies(ctx, chatID, []Reply{mainMenuReply(s.Authenticated)})
	}()

	h.sendReplies(ctx, chatID, []Reply{textReply(MsgVoiceWorking)})

	audio, err := h.transport.ResolveFile(ctx, fileID)
	if err != nil {
		logging.WithChat(chatID).Error("Failed to download voice note", slog.Any("error", err))
		h.sendReplies(ctx, chatID, []Reply{textReply(MsgVoiceFailed)})
		return
	}

	users, err := h.users.FindAll(ctx)
	if err != nil {
		logging.WithChat(chatID).Error("Failed to load users for extraction", slog.Any("error", err))
		h.sendReplies(ctx, chatID, []Reply{textReply(MsgVoiceFailed)})
		return
	}
	sprints, err := h.sprints.FindAll(ctx)
	if err != nil {
		logging.WithChat(chatID).Error("Failed to load sprints for extraction", slog.Any("error", err))
		h.sendReplies(ctx, chatID, []Reply{textReply(MsgVoiceFailed)})
		return
	}

	projection, err := h.extractor.Extract(ctx, audio, buildExtractionContext(users, sprints))
	if err != nil {
		logging.WithChat(chatID).Error("Voice extraction failed", slog.Any("error", err))
		h.sendReplies(ctx, chatID, []Reply{textReply(MsgVoiceFailed)})
		return
	}

	draft := projectionToTask(projection, users, sprints)

	created, err := h.tasks.Create(ctx, draft)
	if err != nil {
		logging.WithChat(chatID).Warn("Voice task creation failed", slog.Any("error", err))
		h.sendReplies(ctx, chatID, []Reply{textReply(MsgErrorCreatingTask + err.Error())})
		return
	}

	replies := []Reply{textReply(formatTaskConfirmation(created))}
	if warnings := projection.Warnings(); len(warnings) > 0 {
		text := "⚠️ The extraction noted:\n"
		for _, w := range warnings {
			text += "• " + w + "\n"
		}
		replies = append(replies, textReply(text))
	}
	h.sendReplies(ctx, chatID, replies)
}

// buildExtractionContext sanitizes the directories into the reference
// snapshot the extraction service matches spoken names against.
func buildExtractionContext(users []model.User, sprints []model.Sprint) extraction.Context {
	refCtx := extraction.Context{
		Usuarios: make([]extraction.UserRef, 0, len(users)),
		Sprints:  make([]extraction.SprintRef, 0, len(sprints)),
	}
	for _, u := range users {
		refCtx.Usuarios = append(refCtx.Usuarios, extraction.UserRef{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		})
	}
	for _, sp := range sprints {
		refCtx.Sprints = append(refCtx.Sprints, extraction.SprintRef{
			SprintID: sp.ID,
			Name:     sp.Name,
		})
	}
	return refCtx
}

// projectionToTask folds the loosely-typed projection into a task draft.
// Fields the service omitted or mangled keep their defaults. Assignee and
// sprint references resolve against the same snapshot the service was
// given; an unresolved or absent reference falls back to the first
// directory entry so a spoken task always lands somewhere visible.
func projectionToTask(p extraction.Projection, users []model.User, sprints []model.Sprint) *model.Task {
	t := model.NewDraftTask()

	if title := p.String("title"); title != "" {
		t.Title = title
	}
	if description := p.String("description"); description != "" {
		t.Description = description
	}
	if priority := p.String("priority"); model.ValidPriority(priority) {
		t.Priority = model.Priority(priority)
	}
	if taskType := p.String("type"); model.ValidTaskType(taskType) {
		t.Type = model.TaskType(taskType)
	}
	if points, ok := p.Int("story_points"); ok && points >= model.MinStoryPoints && points <= model.MaxStoryPoints {
		t.StoryPoints = points
	}
	if hours, ok := p.Float("estimated_hours"); ok && hours > 0 {
		t.EstimatedHours = hours
	}
	if hours, ok := p.Float("actual_hours"); ok && hours >= 0 {
		t.ActualHours = hours
	}
	if start, ok := p.Date("start_date"); ok {
		t.StartDate = start
	}
	if end, ok := p.Date("end_date"); ok {
		t.EndDate = end
	}

	if id, ok := p.Int64("user_id"); ok {
		for i := range users {
			if users[i].ID == id {
				t.Assignee = &users[i]
				break
			}
		}
	}
	if t.Assignee == nil && len(users) > 0 {
		t.Assignee = &users[0]
	}

	if id, ok := p.Int64("sprint_id"); ok {
		for i := range sprints {
			if sprints[i].ID == id {
				t.Sprint = &sprints[i]
				break
			}
		}
	}
	if t.Sprint == nil && len(sprints) > 0 {
		t.Sprint = &sprints[0]
	}

	return t
}
