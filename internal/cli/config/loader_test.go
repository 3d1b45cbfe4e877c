package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultVarcharLen, cfg.VarcharLen)
	assert.Equal(t, DefaultHistoryPath, cfg.HistoryPath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.History)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultServerPort, cfg.GetServerConfig().Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "fabricshift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"varchar_len: 64\noutput: json\nserver:\n  port: 9000\n"), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.VarcharLen)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 9000, cfg.GetServerConfig().Port)
	assert.Equal(t, path, GetConfigFileUsed())
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultHistoryPath, cfg.HistoryPath)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "fabricshift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("varchar_len: 64\n"), 0o644))

	t.Setenv("FABRICSHIFT_VARCHAR_LEN", "33")
	t.Setenv("FABRICSHIFT_SERVER__PORT", "7777")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 33, cfg.VarcharLen)
	assert.Equal(t, 7777, cfg.GetServerConfig().Port)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	t.Setenv("FABRICSHIFT_VARCHAR_LEN", "33")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("varchar-len", 0, "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Set("varchar-len", "42"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.VarcharLen)
	// Unchanged flags do not override.
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigRejectsBadVarcharLen(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "fabricshift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("varchar_len: -1\n"), 0o644))

	_, err := LoadConfig(path, nil)
	assert.ErrorContains(t, err, "varchar_len")
}

func TestGetLoggerFallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
}
