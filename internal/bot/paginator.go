package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/model"
)

const (
	pageSize         = 5
	degradedPageSize = 3
)

// Paginator renders the task list one page at a time. It talks to the
// transport directly because the platform's oversize rejection is part of
// its control flow: a page that comes back with ErrMessageTooLong is
// retried with fewer entries, and if even that fails the user is pointed
// at the priority filters.
type Paginator struct {
	transport ChatTransport
}

// NewPaginator creates a paginator over the given transport.
func NewPaginator(transport ChatTransport) *Paginator {
	return &Paginator{transport: transport}
}

// Show starts a fresh listing at the first page and records the task set
// as the session's pagination cursor.
func (p *Paginator) Show(ctx context.Context, s *Session, tasks []model.Task) {
	if len(tasks) == 0 {
		if err := p.transport.SendText(ctx, s.ChatID, MsgNoTasksAssigned); err != nil {
			logging.WithChat(s.ChatID).Warn("Failed to send empty-list notice", slog.Any("error", err))
		}
		s.CurrentTasks = nil
		s.CurrentPage = 0
		return
	}
	p.render(ctx, s, tasks, 0)
}

// Next advances the cursor one page, staying put at the end.
func (p *Paginator) Next(ctx context.Context, s *Session) {
	if len(s.CurrentTasks) == 0 {
		p.notice(ctx, s, MsgNoTasksAssigned)
		return
	}
	if s.CurrentPage >= totalPages(len(s.CurrentTasks))-1 {
		p.notice(ctx, s, MsgLastPage)
		return
	}
	p.render(ctx, s, s.CurrentTasks, s.CurrentPage+1)
}

// Prev moves the cursor one page back, staying put at the start.
func (p *Paginator) Prev(ctx context.Context, s *Session) {
	if len(s.CurrentTasks) == 0 {
		p.notice(ctx, s, MsgNoTasksAssigned)
		return
	}
	if s.CurrentPage <= 0 {
		p.notice(ctx, s, MsgFirstPage)
		return
	}
	p.render(ctx, s, s.CurrentTasks, s.CurrentPage-1)
}

// totalPages is always computed with the full page size so page numbering
// stays stable even when a page had to be rendered degraded.
func totalPages(taskCount int) int {
	return (taskCount + pageSize - 1) / pageSize
}

// render sends one page. On an oversize rejection the same page is
// re-rendered with the degraded size; a second rejection gives up and
// suggests filtering. The cursor only moves when a page actually went out.
func (p *Paginator) render(ctx context.Context, s *Session, tasks []model.Task, page int) {
	err := p.sendPage(ctx, s.ChatID, tasks, page, pageSize)
	if errors.Is(err, ErrMessageTooLong) {
		logging.WithChat(s.ChatID).Debug("Page too long, degrading",
			slog.Int("page", page))
		err = p.sendPage(ctx, s.ChatID, tasks, page, degradedPageSize)
	}
	if errors.Is(err, ErrMessageTooLong) {
		if err := p.transport.SendKeyboard(ctx, s.ChatID, MsgListTooLong, filterKeyboard(), true); err != nil {
			logging.WithChat(s.ChatID).Warn("Failed to send filter suggestion", slog.Any("error", err))
		}
		return
	}
	if err != nil {
		logging.WithChat(s.ChatID).Warn("Failed to send task page", slog.Any("error", err))
		return
	}

	s.CurrentTasks = tasks
	s.CurrentPage = page
}

// sendPage renders the page slice with the given size and ships it with
// the navigation keyboard.
func (p *Paginator) sendPage(ctx context.Context, chatID string, tasks []model.Task, page, size int) error {
	start := page * size
	if start >= len(tasks) {
		start = len(tasks) - 1
	}
	end := start + size
	if end > len(tasks) {
		end = len(tasks)
	}

	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 MY TASKS — page %d of %d\n\n", page+1, totalPages(len(tasks)))
	for _, t := range tasks[start:end] {
		sb.WriteString(formatTaskLine(t, now))
		sb.WriteString("\n")
	}

	return p.transport.SendKeyboard(ctx, chatID, sb.String(), navigationKeyboard(), false)
}

func (p *Paginator) notice(ctx context.Context, s *Session, text string) {
	if err := p.transport.SendText(ctx, s.ChatID, text); err != nil {
		logging.WithChat(s.ChatID).Warn("Failed to send page notice", slog.Any("error", err))
	}
}

// navigationKeyboard is shown under every task page.
func navigationKeyboard() [][]string {
	return [][]string{
		{LabelPrevPage, LabelNextPage},
		{LabelMainMenu},
	}
}

// filterKeyboard offers the priority filters when the full list cannot be
// displayed.
func filterKeyboard() [][]string {
	return [][]string{
		{LabelFilterCritical, LabelFilterHigh},
		{LabelFilterMedium, LabelFilterLow},
		{LabelMainMenu},
	}
}
