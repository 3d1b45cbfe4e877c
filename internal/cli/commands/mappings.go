package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fabricshift/fabricshift/pkg/mapping"
)

// mappingRow is the JSON shape of one mapping table entry.
type mappingRow struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Category string `json:"category"`
	Special  bool   `json:"special_handling"`
}

// NewMappingsCommand creates the mappings command.
func NewMappingsCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "List the function mapping table",
		Long:  `Display every Tableau function mapping, its Fabric target, category, and whether it needs special handling.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rows := collectMappings(cc.Table, category)

			if cc.Cfg.OutputFormat == "json" {
				return renderJSON(cmd.OutOrStdout(), rows)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Source", "Target", "Category", "Special"})
			for _, row := range rows {
				special := ""
				if row.Special {
					special = "yes"
				}
				t.AppendRow(table.Row{row.Source, row.Target, row.Category, special})
			}
			t.Render()

			stats := cc.Table.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "(%d mappings, %d special)\n",
				stats.Total, stats.SpecialHandling)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (DATE|STRING|AGGREGATE|LOGICAL|MATHEMATICAL|OTHER)")
	return cmd
}

func collectMappings(tbl *mapping.Table, category string) []mappingRow {
	filter := strings.ToUpper(strings.TrimSpace(category))
	names := tbl.AllNames()
	rows := make([]mappingRow, 0, len(names))
	for _, name := range names {
		m, ok := tbl.Lookup(name)
		if !ok {
			continue
		}
		if filter != "" && m.Category.String() != filter {
			continue
		}
		rows = append(rows, mappingRow{
			Source:   name,
			Target:   m.Target,
			Category: m.Category.String(),
			Special:  m.Special,
		})
	}
	return rows
}
