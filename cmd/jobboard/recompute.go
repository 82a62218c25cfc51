package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute recommendations for every user with alerts enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.recommend.RecomputeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d users: %d succeeded, %d failed in %s\n",
				summary.ProcessedUsers, summary.Succeeded, summary.Failed, summary.Took)
			return nil
		},
	}
}
