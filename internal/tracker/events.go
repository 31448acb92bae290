package tracker

import (
	"time"

	"github.com/teamflow/sprintbot/internal/model"
)

// EventType identifies a task lifecycle event.
type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskCompleted EventType = "task_completed"
)

// Event is a task lifecycle notification published to subscribers such as
// the API websocket hub.
type Event struct {
	Type EventType   `json:"type"`
	Task *model.Task `json:"task"`
	At   time.Time   `json:"at"`
}

// Publisher receives task lifecycle events. Publish must not block.
type Publisher interface {
	Publish(Event)
}
