package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobmate/jobboard-service/internal/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, func(url string) (db.MigrationStatus, error) { return db.MigrateDown(url, steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd, db.MigrateUp)
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd, db.MigrationVersion)
			},
		},
	)
	return cmd
}

func runMigration(cmd *cobra.Command, run func(databaseURL string) (db.MigrationStatus, error)) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	status, err := run(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	state := "unchanged"
	if status.Changed {
		state = "changed"
	}
	if status.Dirty {
		state += ", dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", status.Version, state)
	return nil
}
