// Package digest delivers a scheduled KPI summary to configured chats.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teamflow/sprintbot/internal/bot"
	"github.com/teamflow/sprintbot/internal/config"
	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/tracker"
)

// Scheduler manages scheduled digest generation and delivery
type Scheduler struct {
	tasks     *tracker.TaskService
	transport bot.ChatTransport
	config    config.DigestConfig
	cron      *cron.Cron
	mu        sync.Mutex
	running   bool
	entryID   cron.EntryID
	logger    *slog.Logger
}

// NewScheduler creates a new digest scheduler
func NewScheduler(tasks *tracker.TaskService, transport bot.ChatTransport, cfg config.DigestConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	return &Scheduler{
		tasks:     tasks,
		transport: transport,
		config:    cfg,
		cron:      cron.New(cron.WithLocation(loc)),
		logger:    logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.Enabled {
		s.logger.Info("digest scheduler disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runDigest(ctx)
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.logger.Info("digest scheduler started",
		"schedule", s.config.Schedule,
		"timezone", s.config.Timezone,
		"next_run", s.cron.Entry(s.entryID).Next,
	)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("digest scheduler stopped")
}

// NextRun returns the next scheduled run time
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunNow triggers an immediate digest delivery
func (s *Scheduler) RunNow(ctx context.Context) error {
	summary, err := s.tasks.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute digest summary: %w", err)
	}

	text := renderDigest(summary, time.Now())
	for _, chatID := range s.config.ChatIDs {
		if err := s.transport.SendText(ctx, chatID, text); err != nil {
			s.logger.Error("digest delivery failed", "chat_id", chatID, "error", err)
			continue
		}
		s.logger.Info("digest delivered", "chat_id", chatID)
	}
	return nil
}

// runDigest computes and delivers the digest (called by cron)
func (s *Scheduler) runDigest(ctx context.Context) {
	if err := s.RunNow(ctx); err != nil {
		s.logger.Error("failed to deliver digest", "error", err)
	}
}

// renderDigest formats the KPI summary as the daily digest message.
func renderDigest(s *model.KPISummary, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "☀️ DAILY DIGEST — %s\n\n", now.Format("Mon 02 Jan"))
	fmt.Fprintf(&sb, "Tasks: %d total, %d pending, %d in progress, %d done (%.0f%%)\n",
		s.TotalTasks, s.Pending, s.InProgress, s.Completed, s.CompletionRate*100)
	fmt.Fprintf(&sb, "Story points: %d/%d completed\n", s.CompletedStoryPoints, s.TotalStoryPoints)
	fmt.Fprintf(&sb, "Hours: %.1f estimated / %.1f actual\n", s.EstimatedHours, s.ActualHours)

	if len(s.BySprint) > 0 {
		sb.WriteString("\nSprints:\n")
		for _, sp := range s.BySprint {
			fmt.Fprintf(&sb, "• %s: %d/%d done\n", sp.SprintName, sp.Completed, sp.Total)
		}
	}
	return sb.String()
}
