package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sprintbot",
		Short: "Telegram task tracker for sprint teams",
		Long:  `Sprintbot is a Telegram bot that tracks tasks and sprints for a team: guided task creation, voice-note ingestion, paginated task lists and KPI reports, plus a REST API for dashboards.`,
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newDigestCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show sprintbot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sprintbot v%s\n", version)
		},
	}
}
