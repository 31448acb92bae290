package bot

import (
	"context"

	"github.com/teamflow/sprintbot/internal/extraction"
	"github.com/teamflow/sprintbot/internal/model"
)

// UserDirectory is the user service surface the bot consumes.
type UserDirectory interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByTelegramUsername(ctx context.Context, username string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// SprintDirectory is the sprint service surface the bot consumes.
type SprintDirectory interface {
	FindAll(ctx context.Context) ([]model.Sprint, error)
}

// TaskService is the task service surface the bot consumes.
type TaskService interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	Complete(ctx context.Context, id, callerID int64) (*model.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	Summary(ctx context.Context) (*model.KPISummary, error)
}

// Extractor converts a voice note plus directory context into a task
// projection. Implemented by the extraction client.
type Extractor interface {
	Extract(ctx context.Context, audio []byte, refCtx extraction.Context) (extraction.Projection, error)
}
