package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/config"
)

func validateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Check a configuration file",
		Long: `Parse and validate the configuration, then build every group and
compile its rules without starting the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cat, err := catalog.Build(cfg, catalog.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			if err != nil {
				return err
			}
			rules := 0
			for _, e := range cat.Entries() {
				if set := e.Rules(); set != nil {
					rules += len(set.Rules())
				}
			}
			success(cmd.OutOrStdout(), "%s: %d groups, %d rules", cfg.Path(), len(cat.Entries()), rules)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Configuration file")

	return cmd
}
