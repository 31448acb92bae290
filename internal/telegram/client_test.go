package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamflow/sprintbot/internal/bot"
)

// testClient points a client at a local fake of the Bot API. The real API
// prefixes paths with the bot token, which the fake ignores.
func testClient(server *httptest.Server) *Client {
	return &Client{
		botToken:   "TEST",
		apiURL:     server.URL + "/bot",
		fileURL:    server.URL + "/file/bot",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "7" {
			t.Errorf("offset = %q", r.URL.Query().Get("offset"))
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":8,"message":{"message_id":1,"chat":{"id":100,"type":"private"},"from":{"id":5,"username":"analopez"},"text":"/start"}},
			{"update_id":9,"message":{"message_id":2,"chat":{"id":100,"type":"private"},"voice":{"file_id":"voice-1","duration":4}}}
		]}`))
	}))
	defer server.Close()

	updates, err := testClient(server).GetUpdates(context.Background(), 7, 30)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates", len(updates))
	}
	if updates[0].Message.Text != "/start" || updates[0].Message.From.Username != "analopez" {
		t.Errorf("first update = %+v", updates[0].Message)
	}
	if updates[1].Message.Voice == nil || updates[1].Message.Voice.FileID != "voice-1" {
		t.Errorf("second update = %+v", updates[1].Message)
	}
}

func TestGetUpdatesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized","error_code":401}`))
	}))
	defer server.Close()

	if _, err := testClient(server).GetUpdates(context.Background(), 0, 30); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendMessageWithKeyboard(t *testing.T) {
	var got SendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	_, err := testClient(server).SendMessage(context.Background(), SendMessageRequest{
		ChatID: "100",
		Text:   "pick one",
		ReplyMarkup: ReplyKeyboardMarkup{
			Keyboard:        [][]KeyboardButton{{{Text: "A"}, {Text: "B"}}},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.ChatID != "100" || got.Text != "pick one" {
		t.Errorf("got %+v", got)
	}

	markup, ok := got.ReplyMarkup.(map[string]any)
	if !ok {
		t.Fatalf("reply markup = %T", got.ReplyMarkup)
	}
	if markup["one_time_keyboard"] != true {
		t.Errorf("markup = %v", markup)
	}
}

func TestSendMessageTooLong(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: message is too long","error_code":400}`))
	}))
	defer server.Close()

	_, err := testClient(server).SendMessage(context.Background(), SendMessageRequest{ChatID: "1", Text: "x"})
	if !errors.Is(err, bot.ErrMessageTooLong) {
		t.Fatalf("got %v, want ErrMessageTooLong", err)
	}
}

func TestGetFileAndDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/botTEST/getFile":
			if r.URL.Query().Get("file_id") != "voice-1" {
				t.Errorf("file_id = %q", r.URL.Query().Get("file_id"))
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/file_1.oga"}}`))
		case r.URL.Path == "/file/botTEST/voice/file_1.oga":
			_, _ = w.Write([]byte("OGGDATA"))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := testClient(server)
	file, err := client.GetFile(context.Background(), "voice-1")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if file.FilePath != "voice/file_1.oga" {
		t.Errorf("file path = %q", file.FilePath)
	}

	data, err := client.DownloadFile(context.Background(), file.FilePath)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if string(data) != "OGGDATA" {
		t.Errorf("data = %q", data)
	}
}

func TestGetFileWithoutPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"voice-1"}}`))
	}))
	defer server.Close()

	if _, err := testClient(server).GetFile(context.Background(), "voice-1"); err == nil {
		t.Fatal("expected error when file_path is absent")
	}
}
