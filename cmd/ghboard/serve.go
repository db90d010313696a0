package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robby/ghboard/internal/auth"
	"github.com/robby/ghboard/internal/gh"
	"github.com/robby/ghboard/internal/httpcontext"
	"github.com/robby/ghboard/internal/lifecycle"
	"github.com/robby/ghboard/internal/logger"
	"github.com/robby/ghboard/internal/relay"
)

func newServeCmd() *cobra.Command {
	var host, port, owner, repo, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay between the board and GitHub Issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(map[string]*string{
				"host": &host, "port": &port, "owner": &owner, "repo": &repo, "token": &token,
			})
			if err != nil {
				return err
			}
			if err := cfg.ValidateGitHub(); err != nil {
				return err
			}

			zapLogger, err := logger.New(logger.Config{
				Level:    cfg.Logger.Level,
				Encoding: cfg.Logger.Encoding,
				File:     cfg.Logger.File,
			})
			if err != nil {
				return fmt.Errorf("logger error: %w", err)
			}
			defer zapLogger.Sync()

			githubToken, err := auth.GetToken(cfg.GitHub.Token)
			if err != nil {
				return err
			}

			client, err := gh.New(gh.Config{
				Token:    githubToken,
				Owner:    cfg.GitHub.Owner,
				Repo:     cfg.GitHub.Repo,
				Endpoint: cfg.GitHub.Endpoint,
				Logger:   zapLogger,
			})
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}

			handler := relay.NewHandler(client, httpcontext.NewAdapter(cfg.Context.RequestTimeout), zapLogger)
			server := relay.NewServer(
				relay.NewHandlerChain(handler, relay.Options{CORSOrigin: cfg.HTTP.CORSOrigin, Logger: zapLogger}),
				cfg.HTTP.ReadTimeout,
				cfg.HTTP.WriteTimeout,
			)

			manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
			manager.Register("http_server", server.ShutdownWithContext)

			zapLogger.Info("relay started",
				zap.String("address", cfg.Address()),
				zap.String("repository", client.Repository()),
			)
			return manager.Run(cmd.Context(), func() error {
				return server.ListenAndServe(cfg.Address())
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (HOST, default 127.0.0.1)")
	cmd.Flags().StringVar(&port, "port", "", "Listen port (PORT, default 3000)")
	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (GITHUB_OWNER)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (GITHUB_REPO)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (GITHUB_TOKEN, falls back to gh auth token)")

	return cmd
}
