package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMessengerSendKeyboard(t *testing.T) {
	var got SendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	m := NewMessenger(testClient(server))
	err := m.SendKeyboard(context.Background(), "100", "pick", [][]string{{"A", "B"}, {"C"}}, true)
	if err != nil {
		t.Fatalf("SendKeyboard: %v", err)
	}

	markup, ok := got.ReplyMarkup.(map[string]any)
	if !ok {
		t.Fatalf("reply markup = %T", got.ReplyMarkup)
	}
	rows, ok := markup["keyboard"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("keyboard = %v", markup["keyboard"])
	}
	first, _ := rows[0].([]any)
	if len(first) != 2 {
		t.Errorf("first row = %v", first)
	}
	if markup["resize_keyboard"] != true || markup["one_time_keyboard"] != true {
		t.Errorf("markup flags = %v", markup)
	}
}

func TestMessengerRemoveKeyboard(t *testing.T) {
	var got SendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	m := NewMessenger(testClient(server))
	if err := m.SendTextRemoveKeyboard(context.Background(), "100", "bye"); err != nil {
		t.Fatalf("SendTextRemoveKeyboard: %v", err)
	}

	markup, ok := got.ReplyMarkup.(map[string]any)
	if !ok {
		t.Fatalf("reply markup = %T", got.ReplyMarkup)
	}
	if markup["remove_keyboard"] != true {
		t.Errorf("markup = %v", markup)
	}
}

func TestMessengerResolveFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTEST/getFile":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/f.oga"}}`))
		case "/file/botTEST/voice/f.oga":
			_, _ = w.Write([]byte("OGGDATA"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	m := NewMessenger(testClient(server))
	data, err := m.ResolveFile(context.Background(), "voice-1")
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if string(data) != "OGGDATA" {
		t.Errorf("data = %q", data)
	}
}
