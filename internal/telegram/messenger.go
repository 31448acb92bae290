package telegram

import (
	"context"
	"fmt"

	"github.com/teamflow/sprintbot/internal/bot"
)

// Messenger implements bot.ChatTransport on top of the Telegram client.
type Messenger struct {
	client *Client
}

// NewMessenger wraps a Telegram client as a chat transport.
func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

var _ bot.ChatTransport = (*Messenger)(nil)

// SendText sends a plain text message.
func (m *Messenger) SendText(ctx context.Context, chatID, text string) error {
	_, err := m.client.SendMessage(ctx, SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// SendKeyboard sends a text message with a row-grouped reply keyboard.
func (m *Messenger) SendKeyboard(ctx context.Context, chatID, text string, rows [][]string, oneTime bool) error {
	keyboard := make([][]KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, KeyboardButton{Text: label})
		}
		keyboard = append(keyboard, buttons)
	}

	_, err := m.client.SendMessage(ctx, SendMessageRequest{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: ReplyKeyboardMarkup{
			Keyboard:        keyboard,
			ResizeKeyboard:  true,
			OneTimeKeyboard: oneTime,
		},
	})
	return err
}

// SendTextRemoveKeyboard sends a text message and removes any custom
// keyboard currently shown.
func (m *Messenger) SendTextRemoveKeyboard(ctx context.Context, chatID, text string) error {
	_, err := m.client.SendMessage(ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: ReplyKeyboardRemove{RemoveKeyboard: true},
	})
	return err
}

// ResolveFile resolves a Telegram file id and downloads its content fully
// into memory.
func (m *Messenger) ResolveFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := m.client.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	return m.client.DownloadFile(ctx, file.FilePath)
}
