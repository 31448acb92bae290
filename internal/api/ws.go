package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/tracker"
)

const (
	// wsPingInterval is the interval between ping frames sent to the client.
	wsPingInterval = 30 * time.Second
	// wsPongTimeout is how long to wait for a pong response before closing.
	wsPongTimeout = 10 * time.Second
	// wsWriteTimeout is the deadline for writing a message to the client.
	wsWriteTimeout = 5 * time.Second
	// wsSubscriberBuffer is the per-subscriber event buffer. Slow readers
	// drop events rather than blocking the publisher.
	wsSubscriberBuffer = 16
)

// EventHub fans task events out to connected websocket clients. It
// implements tracker.Publisher; Publish never blocks.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan tracker.Event]struct{}
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan tracker.Event]struct{})}
}

var _ tracker.Publisher = (*EventHub)(nil)

// Publish delivers an event to every subscriber with room in its buffer.
func (h *EventHub) Publish(ev tracker.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logging.WithComponent("api").Debug("Dropping event for slow subscriber",
				slog.String("type", string(ev.Type)))
		}
	}
}

func (h *EventHub) subscribe() chan tracker.Event {
	ch := make(chan tracker.Event, wsSubscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unsubscribe(ch chan tracker.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

type taskEventMessage struct {
	Type   string `json:"type"`
	TaskID int64  `json:"taskId"`
	Title  string `json:"title"`
	Status string `json:"status"`
	At     string `json:"at"`
}

// EventsHandler upgrades the connection and streams task events in
// real-time until the client disconnects.
func EventsHandler(hub *EventHub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.WithComponent("api").Error("WS upgrade error", slog.Any("error", err))
			return
		}

		log := logging.WithComponent("api")
		log.Info("Event stream connected", slog.String("remote", r.RemoteAddr))

		sub := hub.subscribe()
		defer hub.unsubscribe(sub)

		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))
		})
		_ = conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))

		// Read pump: drain client messages (none expected) and detect disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						log.Warn("WS read error", slog.Any("error", err))
					}
					return
				}
			}
		}()

		// Write pump: stream events and send pings.
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub:
				if !ok {
					return
				}
				msg := taskEventMessage{
					Type:   string(ev.Type),
					TaskID: ev.Task.ID,
					Title:  ev.Task.Title,
					Status: string(ev.Task.Status),
					At:     ev.At.Format(time.RFC3339),
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("WS write error", slog.Any("error", err))
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
