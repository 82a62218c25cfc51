package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobmate/jobboard-service/internal/ingestion"
)

func newIngestCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ingest [source-id]",
		Short: "Ingest one source, or every enabled source with --all",
		Args: func(_ *cobra.Command, args []string) error {
			if all == (len(args) == 1) || len(args) > 1 {
				return errors.New("pass exactly one source id, or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var results []ingestion.RunResult
			if all {
				results, err = a.ingestion.IngestAllEnabled(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				summary, err := a.ingestion.IngestSource(cmd.Context(), args[0])
				results = append(results, ingestion.RunResult{IngestSummary: summary, Err: err})
			}

			renderRuns(results)
			if failed := countFailed(results); failed > 0 {
				return fmt.Errorf("%d of %d sources failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "ingest every enabled source")
	return cmd
}

func renderRuns(results []ingestion.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Provider", "Fetched", "Saved", "Skipped", "Filtered", "Error"})
	for _, r := range results {
		errText := ""
		switch {
		case r.Err != nil:
			errText = r.Err.Error()
		case r.FetchFailed:
			errText = "feed unreachable"
		}
		t.AppendRow(table.Row{r.SourceID, r.Provider, r.Fetched, r.Saved, r.Skipped, r.Filtered, errText})
	}
	t.Render()
}

func countFailed(results []ingestion.RunResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
