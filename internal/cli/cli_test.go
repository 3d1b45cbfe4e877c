package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricshift/fabricshift/internal/cli/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fabricshift v")
}

func TestConvertFromStdin(t *testing.T) {
	out, err := execute(t, "SELECT NOW() AS t", "convert")
	require.NoError(t, err)
	assert.Contains(t, out, "GETDATE()")
	assert.Contains(t, out, "success: 100%")
}

func TestConvertFromStdinJSON(t *testing.T) {
	out, err := execute(t, "SELECT NOW() AS t", "--output", "json", "convert")
	require.NoError(t, err)
	assert.Contains(t, out, `"converted_sql"`)
	assert.Contains(t, out, "GETDATE()")
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.sql")
	require.NoError(t, os.WriteFile(in, []byte("SELECT SUBSTR(code,1,3) FROM t"), 0o644))

	out, err := execute(t, "", "convert", in)
	require.NoError(t, err)
	assert.Contains(t, out, "report_fabric.sql")

	converted, err := os.ReadFile(filepath.Join(dir, "report_fabric.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(converted), "SUBSTRING(code,1,3)")
}

func TestConvertFlaggedQuery(t *testing.T) {
	out, err := execute(t, "SELECT MEDIAN(salary) FROM e", "convert")
	require.NoError(t, err)
	assert.Contains(t, out, "MEDIAN(salary)")
	assert.Contains(t, out, "PERCENTILE_CONT")
}

func TestConvertRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(in, []byte("SELECT 1"), 0o644))

	_, err := execute(t, "", "convert", in)
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestMappingsCommand(t *testing.T) {
	out, err := execute(t, "", "mappings")
	require.NoError(t, err)
	assert.Contains(t, out, "NOW")
	assert.Contains(t, out, "GETDATE")
	assert.Contains(t, out, "special")
}

func TestMappingsCategoryFilter(t *testing.T) {
	out, err := execute(t, "", "mappings", "--category", "AGGREGATE")
	require.NoError(t, err)
	assert.Contains(t, out, "MEDIAN")
	assert.NotContains(t, out, "SUBSTR")
}

func TestHistoryCommandEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "history", "--history-path", filepath.Join(dir, "h.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "no conversions recorded")
}

func TestConvertRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "h.db")

	_, err := execute(t, "SELECT NOW()", "--history", "--history-path", db, "convert")
	require.NoError(t, err)

	out, err := execute(t, "", "history", "--history-path", db)
	require.NoError(t, err)
	assert.Contains(t, out, "stdin")
}

func TestGetConfigFallback(t *testing.T) {
	cfg := GetConfig(context.Background())
	assert.Equal(t, config.DefaultVarcharLen, cfg.VarcharLen)
}
