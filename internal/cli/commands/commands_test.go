package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricshift/fabricshift/pkg/convert"
	"github.com/fabricshift/fabricshift/pkg/mapping"
)

func TestIsOutputFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"report_fabric.sql", true},
		{"queries/report_fabric.txt", true},
		{"report.sql", false},
		{"fabric.sql", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isOutputFile(tt.path))
		})
	}
}

func TestCollectMappings(t *testing.T) {
	tbl := mapping.NewTable()

	all := collectMappings(tbl, "")
	require.Len(t, all, len(tbl.AllNames()))

	aggregates := collectMappings(tbl, "aggregate")
	require.NotEmpty(t, aggregates)
	for _, row := range aggregates {
		assert.Equal(t, "AGGREGATE", row.Category)
	}
}

func TestRenderReportFlaggedQuery(t *testing.T) {
	res := convert.New(mapping.NewTable()).Convert("SELECT MEDIAN(salary) FROM e")

	var buf bytes.Buffer
	renderReport(&buf, fileResult{
		Path:    "e.sql",
		SQL:     res.SQL,
		Metrics: res.Metrics.Snapshot(),
	})

	out := buf.String()
	assert.Contains(t, out, "e.sql")
	assert.Contains(t, out, "flagged: 1")
	assert.Contains(t, out, "PERCENTILE_CONT")
}

func TestVersionCommandOutput(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "fabricshift v1.2.3")
}
