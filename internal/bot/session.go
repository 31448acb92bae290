package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/model"
)

// State is the per-chat conversational state. States are mutually
// exclusive and drive how the next inbound message is interpreted.
type State int

const (
	StateNone State = iota
	StateWaitingPassword
	StateWaitingTitle
	StateWaitingDescription
	StateWaitingPriority
	StateWaitingType
	StateWaitingPoints
	StateWaitingEstimatedHours
	StateWaitingActualHours
	StateWaitingUser
	StateWaitingSprint
	StateWaitingFinishTask
	StateWaitingAudio
)

var stateNames = map[State]string{
	StateNone:                  "none",
	StateWaitingPassword:       "waiting_password",
	StateWaitingTitle:          "waiting_title",
	StateWaitingDescription:    "waiting_description",
	StateWaitingPriority:       "waiting_priority",
	StateWaitingType:           "waiting_type",
	StateWaitingPoints:         "waiting_points",
	StateWaitingEstimatedHours: "waiting_estimated_hours",
	StateWaitingActualHours:    "waiting_actual_hours",
	StateWaitingUser:           "waiting_user",
	StateWaitingSprint:         "waiting_sprint",
	StateWaitingFinishTask:     "waiting_finish_task",
	StateWaitingAudio:          "waiting_audio",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// inWizard reports whether the state belongs to the task-creation flow.
func (s State) inWizard() bool {
	return s >= StateWaitingTitle && s <= StateWaitingSprint
}

// Session is the mutable per-chat state: wizard progress, the task draft
// being accumulated, directory snapshots, auth status and the pagination
// cursor. A session is owned by its chat and never shared across chats.
type Session struct {
	mu sync.Mutex

	ChatID   string
	Username string // sender's platform username, refreshed on each turn

	State State
	Draft *model.Task

	// Directory snapshots taken when the wizard entered the state that
	// needs them. Selections validate against the snapshot only.
	AvailableUsers   []model.User
	AvailableSprints []model.Sprint

	// Open tasks offered by the finish-task flow.
	OpenTasks []model.Task

	Authenticated     bool
	AuthenticatedUser *model.User

	CurrentPage  int
	CurrentTasks []model.Task

	LastSeen time.Time
}

// Lock serializes turn handling for this chat. One inbound event mutates
// the session at a time even under a concurrent transport.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// ResetDraft replaces the draft with a fresh default-dated task and drops
// the wizard snapshots.
func (s *Session) ResetDraft() {
	s.Draft = model.NewDraftTask()
	s.AvailableUsers = nil
	s.AvailableSprints = nil
}

// SessionStore is a concurrency-safe mapping from chat id to session.
// Sessions are created on first contact and evicted after an idle timeout.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for a chat, creating it atomically on
// first contact. Two concurrent calls for the same chat observe the same
// session.
func (st *SessionStore) GetOrCreate(chatID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[chatID]; ok {
		s.LastSeen = time.Now()
		return s
	}

	s := &Session{
		ChatID:   chatID,
		Draft:    model.NewDraftTask(),
		LastSeen: time.Now(),
	}
	st.sessions[chatID] = s
	return s
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than maxIdle and returns how many
// were removed.
func (st *SessionStore) Sweep(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for chatID, s := range st.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(st.sessions, chatID)
			evicted++
			logging.WithComponent("bot").Debug("Evicted idle session",
				slog.String("chat_id", chatID))
		}
	}
	return evicted
}
