package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/config"
	"jobmate/jobboard-service/internal/logger"
)

var logLevel string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobboard",
		Short:         "Job board ingestion, recommendation and tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newIngestCmd(),
		newRecomputeCmd(),
		newSourcesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "jobboard-service v%s\n", version)
			},
		},
	)
	return root
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
