package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamflow/sprintbot/internal/api"
	"github.com/teamflow/sprintbot/internal/bot"
	"github.com/teamflow/sprintbot/internal/config"
	"github.com/teamflow/sprintbot/internal/digest"
	"github.com/teamflow/sprintbot/internal/extraction"
	"github.com/teamflow/sprintbot/internal/logging"
	"github.com/teamflow/sprintbot/internal/store"
	"github.com/teamflow/sprintbot/internal/telegram"
	"github.com/teamflow/sprintbot/internal/tracker"
)

func defaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".sprintbot", "config.yaml")
}

func newStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bot and the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")
	return cmd
}

func runStart(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	log := logging.WithComponent("main")

	db, err := store.NewStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	hub := api.NewEventHub()

	userSvc := tracker.NewUserService(db.Users())
	projectSvc := tracker.NewProjectService(db.Projects())
	sprintSvc := tracker.NewSprintService(db.Sprints())
	taskSvc := tracker.NewTaskService(db.Tasks(), db.Users(), db.Sprints(), hub)

	extractor := extraction.NewClient(extraction.Config{
		Endpoint:       cfg.Extraction.Endpoint,
		ConnectTimeout: cfg.Extraction.ConnectTimeout,
		ReadTimeout:    cfg.Extraction.ReadTimeout,
	})

	client := telegram.NewClient(cfg.Bot.Token)
	messenger := telegram.NewMessenger(client)
	handler := bot.NewHandler(messenger, userSvc, sprintSvc, taskSvc, extractor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := telegram.NewPoller(client, handler,
		time.Duration(cfg.Bot.PollTimeout)*time.Second,
		cfg.Sessions.IdleTimeout)
	poller.Start(ctx)
	log.Info("Telegram poller started")

	var apiServer *api.Server
	if cfg.API.Enabled {
		router := api.NewRouter(taskSvc, userSvc, sprintSvc, projectSvc, hub, logging.WithComponent("api"))
		apiServer = api.NewServer(cfg.API.Host, cfg.API.Port, router)
		apiServer.Start()
	}

	digestScheduler := digest.NewScheduler(taskSvc, messenger, *cfg.Digest, logging.WithComponent("digest"))
	if err := digestScheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start digest scheduler: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("Shutting down")

	cancel()
	poller.Stop()
	digestScheduler.Stop()
	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Warn("API shutdown error", "error", err)
		}
	}

	return nil
}
