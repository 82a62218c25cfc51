package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobmate/jobboard-service/internal/model"
)

func newSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect registered job sources",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every registered source",
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

			sources, err := a.ingestion.ListSources(cmd.Context())
			if err != nil {
				return err
			}
			renderSources(sources)
			return nil
		},
	})
	return cmd
}

func renderSources(sources []model.JobSource) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Kind", "Provider", "Enabled", "Last ingested", "URL"})
	for _, s := range sources {
		last := "never"
		if s.LastIngestedAt != nil {
			last = s.LastIngestedAt.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{s.ID, s.Name, s.FeedKind, s.Provider, s.Enabled, last, s.BaseURL})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(sources)})
	t.Render()
}
