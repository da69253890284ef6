package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve configured groups over HTTP",
		Long: `Serve the groups declared in the configuration file.

Endpoints:
  GET  /groups, /groups/{name}          group snapshots
  PUT  /groups/{name}/value             set the model value
  PUT  /groups/{name}/members/{index}   check or uncheck one member
  POST /groups/{name}/open|close|keys   drive a select
  GET  /groups/{name}/ws                live change stream
  POST /submissions                     validate and store all groups
  GET  /metrics, /healthz

Examples:
  choicegroup serve
  choicegroup serve -c forms.yaml --port=9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Configuration file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, closer := newLogger(cfg.Log, cmd.ErrOrStderr())
	defer closer.Close()

	cat, err := catalog.Build(cfg, catalog.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := server.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	srv := server.New(cfg, cat, server.WithLogger(logger), server.WithResources(res))
	defer srv.Close()

	info(cmd.OutOrStdout(), "serving %d groups on http://%s", len(cat.Entries()), cfg.Address())
	return srv.Run(ctx)
}
