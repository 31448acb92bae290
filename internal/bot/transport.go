package bot

import (
	"context"
	"errors"
)

// ErrMessageTooLong is returned by a ChatTransport when the platform
// rejects an outbound message for exceeding its size limit. The paginator
// uses it to degrade the page size.
var ErrMessageTooLong = errors.New("message too long")

// ChatTransport is the outbound side of the chat platform. The dispatcher
// and its handlers depend on this interface only; the Telegram adapter
// implements it.
type ChatTransport interface {
	// SendText sends a plain text message.
	SendText(ctx context.Context, chatID, text string) error
	// SendKeyboard sends a text message with a row-grouped reply keyboard.
	SendKeyboard(ctx context.Context, chatID, text string, rows [][]string, oneTime bool) error
	// SendTextRemoveKeyboard sends a text message and removes any custom
	// keyboard currently shown.
	SendTextRemoveKeyboard(ctx context.Context, chatID, text string) error
	// ResolveFile resolves a platform file reference (e.g. a voice note)
	// and downloads its content fully into memory.
	ResolveFile(ctx context.Context, fileID string) ([]byte, error)
}

// Reply is one outbound message produced by a handler. Handlers return
// replies instead of talking to the transport so the state machine can be
// tested in isolation.
type Reply struct {
	Text           string
	Keyboard       [][]string
	OneTime        bool
	RemoveKeyboard bool
}

// textReply builds a plain text reply.
func textReply(text string) Reply {
	return Reply{Text: text}
}

// promptReply builds a text reply that also hides any custom keyboard.
func promptReply(text string) Reply {
	return Reply{Text: text, RemoveKeyboard: true}
}

// keyboardReply builds a reply carrying a one-time option keyboard.
func keyboardReply(text string, rows [][]string) Reply {
	return Reply{Text: text, Keyboard: rows, OneTime: true}
}
