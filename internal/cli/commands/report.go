package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// renderReport prints the conversion report for one input: headline metrics,
// per-category conversion counts, and the review-flag table.
func renderReport(w io.Writer, res fileResult) {
	fmt.Fprintf(w, "\n%s\n", res.Path)
	if res.Output != "" {
		fmt.Fprintf(w, "  wrote %s\n", res.Output)
	}
	if res.CleanErr != "" {
		fmt.Fprintf(w, "  cleaning: %s\n", res.CleanErr)
	}

	m := res.Metrics
	fmt.Fprintf(w, "  statements: %d  converted: %d  flagged: %d  success: %.0f%%\n",
		m.TotalStatements, m.SuccessfulConversions, m.FlaggedStatements, m.SuccessRate)

	if hasConversions(m.FunctionConversions) {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Category", "Conversions"})
		for _, cat := range categoryOrder {
			if n := m.FunctionConversions[cat]; n > 0 {
				t.AppendRow(table.Row{cat, n})
			}
		}
		t.Render()
	}

	if len(m.FlaggedLines) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Line", "Reason"})
		for _, f := range m.FlaggedLines {
			line := fmt.Sprintf("%d", f.Line)
			if f.Line == 0 {
				line = "-"
			}
			t.AppendRow(table.Row{line, f.Reason})
		}
		t.Render()
	}

	if len(m.UnsupportedFunctions) > 0 {
		fmt.Fprintf(w, "  unsupported: %v\n", m.UnsupportedFunctions)
	}
}

// categoryOrder fixes the rendering order of conversion categories.
var categoryOrder = []string{"DATE", "STRING", "AGGREGATE", "LOGICAL", "MATHEMATICAL", "OTHER"}

func hasConversions(counts map[string]int) bool {
	for _, n := range counts {
		if n > 0 {
			return true
		}
	}
	return false
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
