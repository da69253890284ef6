package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/middleware"
)

func tokenCmd() *cobra.Command {
	var (
		configPath string
		subject    string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the write endpoints",
		Long: `Sign a token with server.jwtSecret (or $` + config.EnvJWTSecret + `).

Example:
  curl -H "Authorization: Bearer $(choicegroup token --subject ops)" ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return errors.New("E400").WithSuggestionf("set server.jwtSecret or $%s", config.EnvJWTSecret)
			}
			token, err := middleware.IssueToken([]byte(cfg.Server.JWTSecret), subject, ttl)
			if err != nil {
				return errors.New("E400").Wrap(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Configuration file")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}
