package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fabricshift/fabricshift/internal/history"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversions",
		Long:  `List past conversions from the history database, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store := cc.Store
			if store == nil {
				// The command explicitly asks for history, so open the store
				// even when recording is disabled.
				store, err = history.Open(cc.Cfg.HistoryPath)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			records, err := store.List(limit)
			if err != nil {
				return err
			}

			if cc.Cfg.OutputFormat == "json" {
				return renderJSON(cmd.OutOrStdout(), records)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no conversions recorded)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Source", "Flagged", "Success", "When"})
			for _, rec := range records {
				t.AppendRow(table.Row{
					rec.ID[:8],
					rec.Source,
					rec.Metrics.FlaggedStatements,
					fmt.Sprintf("%.0f%%", rec.Metrics.SuccessRate),
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "(%d conversions)\n", len(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of conversions to list (default 50)")
	return cmd
}
