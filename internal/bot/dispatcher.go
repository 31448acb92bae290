// Package bot implements the conversational core: per-chat sessions, the
// command dispatcher, the task-creation wizard, pagination and voice
// ingestion. It depends on service interfaces and a ChatTransport only, so
// every flow is testable without a live chat platform.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/model"
)

// Handler routes inbound chat events. Command matches always win over
// conversational state; text that matches neither is dropped silently.
type Handler struct {
	transport ChatTransport
	sessions  *SessionStore
	users     UserDirectory
	sprints   SprintDirectory
	tasks     TaskService
	extractor Extractor
	wizard    *Wizard
	paginator *Paginator
	log       *slog.Logger
}

// NewHandler wires the dispatcher and its flows.
func NewHandler(transport ChatTransport, users UserDirectory, sprints SprintDirectory, tasks TaskService, extractor Extractor) *Handler {
	return &Handler{
		transport: transport,
		sessions:  NewSessionStore(),
		users:     users,
		sprints:   sprints,
		tasks:     tasks,
		extractor: extractor,
		wizard:    NewWizard(users, sprints, tasks),
		paginator: NewPaginator(transport),
		log:       logging.WithComponent("bot"),
	}
}

// Sessions exposes the session store for the idle sweeper.
func (h *Handler) Sessions() *SessionStore {
	return h.sessions
}

// HandleText processes one inbound text message for a chat. The chat's
// session is locked for the whole turn, so concurrent updates for the same
// chat are serialized.
func (h *Handler) HandleText(ctx context.Context, chatID, username, text string) {
	s := h.sessions.GetOrCreate(chatID)
	s.Lock()
	defer s.Unlock()
	s.Username = username

	h.log.Debug("Inbound message",
		slog.String("chat_id", chatID),
		slog.String("state", s.State.String()))

	if cmd, ok := resolveCommand(text); ok {
		h.sendReplies(ctx, chatID, h.handleCommand(ctx, s, cmd))
		return
	}

	h.sendReplies(ctx, chatID, h.handleStateful(ctx, s, text))
}

// handleCommand executes a matched command. Commands interrupt whatever
// flow the chat was in.
func (h *Handler) handleCommand(ctx context.Context, s *Session, cmd Command) []Reply {
	switch cmd {
	case CmdStart, CmdMenu:
		s.State = StateNone
		s.ResetDraft()
		return []Reply{mainMenuReply(s.Authenticated)}

	case CmdLogin:
		return h.startLogin(s)

	case CmdLogout:
		return h.logout(s)

	case CmdHideKeyboard:
		s.State = StateNone
		return []Reply{promptReply(MsgBye)}

	case CmdCreateTask:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		return h.wizard.Start(s)

	case CmdListTasks:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		h.listTasks(ctx, s, "")
		return nil

	case CmdFinishTask:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		return h.startFinishTask(ctx, s)

	case CmdVoiceTask:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		s.State = StateWaitingAudio
		return []Reply{promptReply(MsgSendVoiceNote)}

	case CmdKPIs:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		return h.showKPIs(ctx, s)

	case CmdPrevPage:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		h.paginator.Prev(ctx, s)
		return nil

	case CmdNextPage:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		h.paginator.Next(ctx, s)
		return nil

	case CmdFilterCritical, CmdFilterHigh, CmdFilterMedium, CmdFilterLow:
		if !s.Authenticated {
			return []Reply{textReply(MsgLoginRequired)}
		}
		h.listTasks(ctx, s, filterPriority(cmd))
		return nil
	}

	return nil
}

// handleStateful interprets free text by the session's current state.
// Text arriving in the idle state is dropped without a reply.
func (h *Handler) handleStateful(ctx context.Context, s *Session, text string) []Reply {
	switch {
	case s.State == StateWaitingPassword:
		return h.completeLogin(ctx, s, text)

	case s.State.inWizard():
		return h.wizard.Advance(ctx, s, text)

	case s.State == StateWaitingFinishTask:
		return h.completeFinishTask(ctx, s, text)

	case s.State == StateWaitingAudio:
		return []Reply{textReply(MsgSendVoiceNote)}
	}

	return nil
}

// listTasks fetches the caller's tasks, optionally filtered by priority,
// and hands them to the paginator.
func (h *Handler) listTasks(ctx context.Context, s *Session, priority model.Priority) {
	tasks, err := h.tasks.ListByUser(ctx, s.AuthenticatedUser.ID)
	if err != nil {
		logging.WithChat(s.ChatID).Error("Failed to list tasks", slog.Any("error", err))
		h.sendReplies(ctx, s.ChatID, []Reply{textReply(MsgTasksUnavailable)})
		return
	}

	if priority != "" {
		filtered := tasks[:0:0]
		for _, t := range tasks {
			if t.Priority == priority {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	h.paginator.Show(ctx, s, tasks)
}

func filterPriority(cmd Command) model.Priority {
	switch cmd {
	case CmdFilterCritical:
		return model.PriorityCritical
	case CmdFilterHigh:
		return model.PriorityHigh
	case CmdFilterMedium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// startFinishTask offers the caller's open tasks as a keyboard, one task
// per row.
func (h *Handler) startFinishTask(ctx context.Context, s *Session) []Reply {
	tasks, err := h.tasks.ListByUser(ctx, s.AuthenticatedUser.ID)
	if err != nil {
		logging.WithChat(s.ChatID).Error("Failed to list open tasks", slog.Any("error", err))
		return []Reply{textReply(MsgTasksUnavailable)}
	}

	var open []model.Task
	for _, t := range tasks {
		if t.Status != model.StatusCompleted {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return []Reply{textReply(MsgNoOpenTasks)}
	}

	s.OpenTasks = open
	s.State = StateWaitingFinishTask
	return []Reply{keyboardReply(MsgSelectTaskToFinish, finishTaskKeyboard(open))}
}

// completeFinishTask matches the selection against the offered rows and
// marks the task completed.
func (h *Handler) completeFinishTask(ctx context.Context, s *Session, text string) []Reply {
	for _, t := range s.OpenTasks {
		if text != finishTaskLabel(t) {
			continue
		}

		s.State = StateNone
		s.OpenTasks = nil

		done, err := h.tasks.Complete(ctx, t.ID, s.AuthenticatedUser.ID)
		if err != nil {
			logging.WithChat(s.ChatID).Warn("Task completion failed", slog.Any("error", err))
			return []Reply{
				textReply(MsgErrorCompletingTask + err.Error()),
				mainMenuReply(s.Authenticated),
			}
		}

		return []Reply{
			textReply(fmt.Sprintf("✅ Task #%d \"%s\" completed!", done.ID, done.Title)),
			mainMenuReply(s.Authenticated),
		}
	}

	return []Reply{textReply(MsgInvalidFinishTask)}
}

// showKPIs renders the aggregate metrics report.
func (h *Handler) showKPIs(ctx context.Context, s *Session) []Reply {
	summary, err := h.tasks.Summary(ctx)
	if err != nil {
		logging.WithChat(s.ChatID).Error("Failed to compute KPIs", slog.Any("error", err))
		return []Reply{textReply("Could not compute KPIs right now.")}
	}
	return []Reply{textReply(formatKPISummary(summary)), mainMenuReply(s.Authenticated)}
}

// sendReplies ships handler output through the transport. Send failures
// are logged and swallowed; a lost reply must not wedge the session.
func (h *Handler) sendReplies(ctx context.Context, chatID string, replies []Reply) {
	for _, r := range replies {
		var err error
		switch {
		case len(r.Keyboard) > 0:
			err = h.transport.SendKeyboard(ctx, chatID, r.Text, r.Keyboard, r.OneTime)
		case r.RemoveKeyboard:
			err = h.transport.SendTextRemoveKeyboard(ctx, chatID, r.Text)
		default:
			err = h.transport.SendText(ctx, chatID, r.Text)
		}
		if err != nil {
			logging.WithChat(chatID).Warn("Failed to send reply", slog.Any("error", err))
		}
	}
}
