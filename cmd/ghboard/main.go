package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robby/ghboard/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ghboard",
		Short: "Kanban board stored as GitHub Issues",
		Long: `ghboard keeps a personal kanban board in a GitHub repository's issues.

Each task is an issue: status, priority and tags are labels, the remaining
fields live in the issue body. The relay holds the GitHub token and exposes a
small JSON API; the board talks only to the relay.

  ghboard serve   run the relay
  ghboard board   open the terminal board
  ghboard stats   show points, rank and achievements

Authentication (relay only):
  1. GITHUB_TOKEN environment variable or --token
  2. GitHub CLI: run 'gh auth login'

Settings are read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newBoardCmd(), newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any non-empty flag overrides.
func loadConfig(overrides map[string]*string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	targets := map[string]*string{
		"host":      &cfg.HTTP.Host,
		"port":      &cfg.HTTP.Port,
		"token":     &cfg.GitHub.Token,
		"owner":     &cfg.GitHub.Owner,
		"repo":      &cfg.GitHub.Repo,
		"relay":     &cfg.Board.RelayURL,
		"points-db": &cfg.Board.PointsDB,
		"log-file":  &cfg.Logger.File,
	}
	for name, val := range overrides {
		if val == nil || *val == "" {
			continue
		}
		if target, ok := targets[name]; ok {
			*target = *val
		}
	}
	return cfg, nil
}
