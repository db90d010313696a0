package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robby/ghboard/internal/lifecycle"
	"github.com/robby/ghboard/internal/logger"
	"github.com/robby/ghboard/internal/points"
	"github.com/robby/ghboard/internal/relayclient"
	"github.com/robby/ghboard/internal/store"
	"github.com/robby/ghboard/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var relayURL, pointsDB, logFile string
	var noPoints bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the terminal board",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(map[string]*string{
				"relay": &relayURL, "points-db": &pointsDB, "log-file": &logFile,
			})
			if err != nil {
				return err
			}

			// The board owns the terminal, so it only logs to a file.
			zapLogger := zap.NewNop()
			if cfg.Logger.File != "" {
				zapLogger, err = logger.New(logger.Config{
					Level:    cfg.Logger.Level,
					Encoding: cfg.Logger.Encoding,
					File:     cfg.Logger.File,
				})
				if err != nil {
					return fmt.Errorf("logger error: %w", err)
				}
			}

			manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
			manager.Register("logger", func(context.Context) error {
				_ = zapLogger.Sync()
				return nil
			})
			defer func() {
				err = errors.Join(err, manager.Stop(context.Background()))
			}()

			client, err := relayclient.New(relayclient.Config{
				BaseURL: cfg.Board.RelayURL,
				Timeout: cfg.Context.RequestTimeout,
				Logger:  zapLogger,
			})
			if err != nil {
				return err
			}

			var tracker *points.Tracker
			if !noPoints {
				repo, err := points.Open(cfg.Board.PointsDB)
				if err != nil {
					return err
				}
				manager.Register("points_db", func(context.Context) error {
					return repo.Close()
				})

				tracker, err = points.NewTracker(repo)
				if err != nil {
					return err
				}
			}

			s := store.New(client)
			app := tui.NewAppModel(s, tracker, context.Background(), cfg.Board.RelayURL)

			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("program error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay", "", "Relay base URL (RELAY_URL, default http://HOST:PORT)")
	cmd.Flags().StringVar(&pointsDB, "points-db", "", "Points database file (POINTS_DB)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (LOG_FILE)")
	cmd.Flags().BoolVar(&noPoints, "no-points", false, "Disable points and achievements")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var pointsDB string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print points, rank and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(map[string]*string{"points-db": &pointsDB})
			if err != nil {
				return err
			}

			repo, err := points.Open(cfg.Board.PointsDB)
			if err != nil {
				return err
			}
			defer repo.Close()

			tracker, err := points.NewTracker(repo)
			if err != nil {
				return err
			}
			printStats(cmd, tracker.State())
			return nil
		},
	}

	cmd.Flags().StringVar(&pointsDB, "points-db", "", "Points database file (POINTS_DB)")
	return cmd
}

func printStats(cmd *cobra.Command, state points.State) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Rank:     %s\n", state.Rank.Name)
	fmt.Fprintf(out, "Points:   %d", state.Points)
	if next, ok := points.NextRank(state.Rank); ok {
		fmt.Fprintf(out, " (%d to %s)", next.Threshold-state.Points, next.Name)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Streak:   %d day(s)", state.Streak)
	if state.LastCompletionDate != "" {
		fmt.Fprintf(out, ", last completion %s", state.LastCompletionDate)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Done:     %d total, %d critical, %d early\n",
		state.Stats.TasksCompleted, state.Stats.CriticalTasksCompleted, state.Stats.EarlyCompletions)

	if len(state.Stats.ByPriority) > 0 {
		parts := make([]string, 0, len(state.Stats.ByPriority))
		for p, n := range state.Stats.ByPriority {
			parts = append(parts, fmt.Sprintf("%s=%d", p, n))
		}
		sort.Strings(parts)
		fmt.Fprintf(out, "Priority: %s\n", strings.Join(parts, " "))
	}

	fmt.Fprintln(out, "\nAchievements:")
	for _, a := range points.Achievements {
		mark := "[ ]"
		if state.HasAchievement(a.ID) {
			mark = "[x]"
		}
		fmt.Fprintf(out, "  %s %-18s %s (+%d)\n", mark, a.Name, a.Description, a.Points)
	}
}
