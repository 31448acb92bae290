package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamflow/sprintbot/internal/api"
	"github.com/teamflow/sprintbot/internal/config"
	"github.com/teamflow/sprintbot/internal/digest"
	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/store"
	"github.com/teamflow/sprintbot/internal/telegram"
	"github.com/teamflow/sprintbot/internal/tracker"
)

// newDigestCmd sends the KPI digest once and exits, useful for testing the
// digest configuration without waiting for the schedule.
func newDigestCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the KPI digest now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")
	return cmd
}

func runDigest(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Digest.ChatIDs) == 0 {
		return fmt.Errorf("digest.chat_ids is empty")
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	db, err := store.NewStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	taskSvc := tracker.NewTaskService(db.Tasks(), db.Users(), db.Sprints(), api.NewEventHub())
	messenger := telegram.NewMessenger(telegram.NewClient(cfg.Bot.Token))

	scheduler := digest.NewScheduler(taskSvc, messenger, *cfg.Digest, logging.WithComponent("digest"))
	return scheduler.RunNow(ctx)
}
