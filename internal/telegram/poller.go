package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teamflow/sprintbot/internal/bot"
	"github.com/teamflow/sprintbot/internal/logging"
)

const sessionSweepInterval = 10 * time.Minute

// Poller runs the Telegram long-polling loop and dispatches updates to the
// bot handler. It also periodically evicts idle chat sessions.
type Poller struct {
	client      *Client
	handler     *bot.Handler
	pollTimeout time.Duration
	idleTimeout time.Duration

	offset int64
	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPoller creates a poller over the given client and handler.
func NewPoller(client *Client, handler *bot.Handler, pollTimeout, idleTimeout time.Duration) *Poller {
	return &Poller{
		client:      client,
		handler:     handler,
		pollTimeout: pollTimeout,
		idleTimeout: idleTimeout,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the long-polling and sweep loops in goroutines.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.pollLoop(ctx)

	p.wg.Add(1)
	go p.sweepLoop(ctx)
}

// Stop gracefully stops the loops.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

// pollLoop continuously fetches and processes updates.
func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	logging.WithComponent("telegram").Debug("Poll loop started")

	for {
		select {
		case <-ctx.Done():
			logging.WithComponent("telegram").Debug("Poll loop stopped")
			return
		case <-p.stopCh:
			logging.WithComponent("telegram").Debug("Poll loop stopped")
			return
		default:
			p.fetchAndProcess(ctx)
		}
	}
}

// sweepLoop evicts idle chat sessions periodically.
func (p *Poller) sweepLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if evicted := p.handler.Sessions().Sweep(p.idleTimeout); evicted > 0 {
				logging.WithComponent("telegram").Info("Evicted idle sessions",
					slog.Int("count", evicted))
			}
		}
	}
}

// fetchAndProcess fetches updates from Telegram and processes them.
func (p *Poller) fetchAndProcess(ctx context.Context) {
	updates, err := p.client.GetUpdates(ctx, p.offset, int(p.pollTimeout.Seconds()))
	if err != nil {
		if ctx.Err() == nil {
			logging.WithComponent("telegram").Warn("Error fetching updates", slog.Any("error", err))
		}
		time.Sleep(time.Second)
		return
	}

	for _, update := range updates {
		p.processUpdate(ctx, update)

		// Advance the offset to acknowledge this update
		p.mu.Lock()
		if update.UpdateID >= p.offset {
			p.offset = update.UpdateID + 1
		}
		p.mu.Unlock()
	}
}

// processUpdate dispatches one update to the handler. Updates without a
// message, or messages carrying neither text nor voice, are skipped.
func (p *Poller) processUpdate(ctx context.Context, update *Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	chatID := fmt.Sprintf("%d", msg.Chat.ID)
	username := ""
	if msg.From != nil {
		username = msg.From.Username
	}

	switch {
	case msg.Voice != nil:
		p.handler.HandleVoice(ctx, chatID, username, msg.Voice.FileID)
	case msg.Text != "":
		p.handler.HandleText(ctx, chatID, username, msg.Text)
	}
}
