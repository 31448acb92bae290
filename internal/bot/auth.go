package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/tracker"
)

// startLogin enters the password prompt. Any wizard progress is discarded.
func (h *Handler) startLogin(s *Session) []Reply {
	s.State = StateWaitingPassword
	s.ResetDraft()
	return []Reply{promptReply(MsgEnterPassword)}
}

// completeLogin consumes the password turn. The sender is identified by
// platform username first; only registered users get a credential check.
// A wrong password keeps the session in the password state so the next
// message is treated as a retry.
func (h *Handler) completeLogin(ctx context.Context, s *Session, password string) []Reply {
	user, err := h.users.FindByTelegramUsername(ctx, s.Username)
	if err != nil {
		logging.WithChat(s.ChatID).Error("User lookup failed", slog.Any("error", err))
		s.State = StateNone
		return []Reply{promptReply(MsgLoginUnavailable)}
	}
	if user == nil {
		s.State = StateNone
		return []Reply{promptReply(MsgUserNotRegistered)}
	}

	authed, err := h.users.Authenticate(ctx, user.Email, password)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidCredentials) {
			return []Reply{promptReply(MsgIncorrectPassword)}
		}
		logging.WithChat(s.ChatID).Error("Authentication failed", slog.Any("error", err))
		return []Reply{promptReply(MsgLoginUnavailable)}
	}

	s.Authenticated = true
	s.AuthenticatedUser = authed
	s.State = StateNone

	welcome := fmt.Sprintf("✅ Login successful. Welcome, %s!", authed.FirstName)
	return []Reply{textReply(welcome), mainMenuReply(true)}
}

// logout clears the chat's authentication. Logging out while not logged in
// is a no-op with a notice.
func (h *Handler) logout(s *Session) []Reply {
	if !s.Authenticated {
		return []Reply{promptReply(MsgNotLoggedIn)}
	}
	s.Authenticated = false
	s.AuthenticatedUser = nil
	s.State = StateNone
	s.ResetDraft()
	return []Reply{promptReply(MsgLoggedOut)}
}
