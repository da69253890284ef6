package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/internal/scenario"
)

func runCmd() *cobra.Command {
	var (
		logLevel string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenarios against fresh groups",
		Long: `Run one or more scenario files. Each scenario declares its groups
and a list of steps; every change notification is printed as it happens.

The command exits non-zero on the first failing scenario.

Examples:
  choicegroup run radio.yaml
  choicegroup run --log-level=debug scenarios/*.yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("E400").WithSuggestion("pass at least one scenario file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScenarios(ctx, cmd, args, logLevel, quiet)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Engine log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary line per scenario")

	return cmd
}

func runScenarios(ctx context.Context, cmd *cobra.Command, paths []string, logLevel string, quiet bool) error {
	logger, closer := newLogger(config.LogConfig{Level: logLevel, Format: "text"}, cmd.ErrOrStderr())
	defer closer.Close()

	opts := []scenario.Option{scenario.WithLogger(logger)}
	if !quiet {
		opts = append(opts, scenario.WithOutput(cmd.OutOrStdout()))
	}
	runner := scenario.NewRunner(opts...)

	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		result, err := runner.Run(ctx, sc)
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "%s: %d steps, %d changes", path, result.Steps, len(result.Changes))
	}
	return nil
}
