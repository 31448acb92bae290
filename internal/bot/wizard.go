package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/model"
)

// Wizard is the linear multi-turn dialog that builds a task draft field by
// field. Each turn accepts only input satisfying the current state's
// constraint: valid input writes into the draft and advances one state,
// invalid input reprompts in place. There is no backward transition and no
// attempt limit.
type Wizard struct {
	users   UserDirectory
	sprints SprintDirectory
	tasks   TaskService
}

// NewWizard creates a task-creation wizard over the given services.
func NewWizard(users UserDirectory, sprints SprintDirectory, tasks TaskService) *Wizard {
	return &Wizard{users: users, sprints: sprints, tasks: tasks}
}

// Start enters the wizard: fresh draft, first prompt.
func (w *Wizard) Start(s *Session) []Reply {
	s.ResetDraft()
	s.State = StateWaitingTitle
	return []Reply{promptReply(MsgEnterTaskTitle)}
}

// Advance is the wizard's transition function: given the session's current
// state and one inbound text, it mutates the draft, moves the state and
// returns the replies to send. It never touches the transport, so the
// whole state machine is testable in isolation.
func (w *Wizard) Advance(ctx context.Context, s *Session, input string) []Reply {
	switch s.State {
	case StateWaitingTitle:
		s.Draft.Title = input
		s.State = StateWaitingDescription
		return []Reply{promptReply(MsgEnterTaskDescription)}

	case StateWaitingDescription:
		s.Draft.Description = input
		s.State = StateWaitingPriority
		return []Reply{keyboardReply(MsgSelectPriority, priorityKeyboard())}

	case StateWaitingPriority:
		if !model.ValidPriority(input) {
			// Non-matching input is ignored until the option keyboard
			// produces a valid string.
			return nil
		}
		s.Draft.Priority = model.Priority(input)
		s.State = StateWaitingType
		return []Reply{keyboardReply(MsgSelectType, typeKeyboard())}

	case StateWaitingType:
		if !model.ValidTaskType(input) {
			return nil
		}
		s.Draft.Type = model.TaskType(input)
		s.State = StateWaitingPoints
		return []Reply{promptReply(MsgEnterStoryPoints)}

	case StateWaitingPoints:
		points, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || points < model.MinStoryPoints || points > model.MaxStoryPoints {
			return []Reply{promptReply(MsgInvalidStoryPoints)}
		}
		s.Draft.StoryPoints = points
		s.State = StateWaitingEstimatedHours
		return []Reply{promptReply(MsgEnterEstimatedHours)}

	case StateWaitingEstimatedHours:
		hours, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil || hours <= 0 {
			return []Reply{promptReply(MsgInvalidEstimatedHours)}
		}
		s.Draft.EstimatedHours = hours
		s.State = StateWaitingActualHours
		return []Reply{promptReply(MsgEnterActualHours)}

	case StateWaitingActualHours:
		hours, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil || hours < 0 {
			return []Reply{promptReply(MsgInvalidActualHours)}
		}
		s.Draft.ActualHours = hours
		return w.enterUserSelection(ctx, s)

	case StateWaitingUser:
		for i := range s.AvailableUsers {
			if input == s.AvailableUsers[i].DisplayName() {
				user := s.AvailableUsers[i]
				s.Draft.Assignee = &user
				return w.enterSprintSelection(ctx, s)
			}
		}
		return []Reply{textReply(MsgInvalidUser)}

	case StateWaitingSprint:
		for i := range s.AvailableSprints {
			if input == "Sprint "+s.AvailableSprints[i].Name {
				sprint := s.AvailableSprints[i]
				s.Draft.Sprint = &sprint
				return w.submit(ctx, s)
			}
		}
		return []Reply{textReply(MsgInvalidSprint)}
	}

	return nil
}

// enterUserSelection snapshots the user directory and prompts for the
// assignee. An empty or failing directory aborts the wizard.
func (w *Wizard) enterUserSelection(ctx context.Context, s *Session) []Reply {
	users, err := w.users.FindAll(ctx)
	if err != nil {
		logging.WithChat(s.ChatID).Warn("Failed to load users", slog.Any("error", err))
		return w.abort(s, MsgNoUsersAvailable)
	}
	if len(users) == 0 {
		return w.abort(s, MsgNoUsersAvailable)
	}

	s.AvailableUsers = users
	s.State = StateWaitingUser
	return []Reply{keyboardReply(MsgSelectUser, userKeyboard(users))}
}

// enterSprintSelection snapshots the sprint directory and prompts for the
// sprint. An empty or failing directory aborts the wizard.
func (w *Wizard) enterSprintSelection(ctx context.Context, s *Session) []Reply {
	sprints, err := w.sprints.FindAll(ctx)
	if err != nil {
		logging.WithChat(s.ChatID).Warn("Failed to load sprints", slog.Any("error", err))
		return w.abort(s, MsgNoSprintsAvailable)
	}
	if len(sprints) == 0 {
		return w.abort(s, MsgNoSprintsAvailable)
	}

	s.AvailableSprints = sprints
	s.State = StateWaitingSprint
	return []Reply{keyboardReply(MsgSelectSprint, sprintKeyboard(sprints))}
}

// submit attempts task creation with the completed draft. Success and
// failure both return to the menu; the draft is never retried.
func (w *Wizard) submit(ctx context.Context, s *Session) []Reply {
	created, err := w.tasks.Create(ctx, s.Draft)

	s.State = StateNone
	s.ResetDraft()

	if err != nil {
		logging.WithChat(s.ChatID).Warn("Task creation failed", slog.Any("error", err))
		return []Reply{
			textReply(MsgErrorCreatingTask + err.Error()),
			mainMenuReply(s.Authenticated),
		}
	}

	return []Reply{
		textReply(formatTaskConfirmation(created)),
		mainMenuReply(s.Authenticated),
	}
}

// abort leaves the wizard with a notice and redisplays the menu.
func (w *Wizard) abort(s *Session, notice string) []Reply {
	s.State = StateNone
	s.ResetDraft()
	return []Reply{textReply(notice), mainMenuReply(s.Authenticated)}
}
