// Package commands implements the fabricshift subcommands.
package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fabricshift/fabricshift/internal/cli/config"
	"github.com/fabricshift/fabricshift/internal/history"
	"github.com/fabricshift/fabricshift/pkg/convert"
	"github.com/fabricshift/fabricshift/pkg/mapping"
	"github.com/fabricshift/fabricshift/pkg/rewrite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Table     *mapping.Table
	Converter *convert.Converter
	Store     *history.Store
}

// NewCommandContext wires the mapping table, converter, and optional history
// store. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	table := mapping.NewTable()
	engine := rewrite.NewEngine(rewrite.WithVarcharLen(cfg.VarcharLen))
	converter := convert.New(table,
		convert.WithEngine(engine),
		convert.WithLogger(logger),
	)

	cc := &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Table:     table,
		Converter: converter,
	}

	if cfg.History {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		cc.Store = store
	}

	cleanup := func() {
		if cc.Store != nil {
			_ = cc.Store.Close()
		}
	}
	return cc, cleanup, nil
}

// getConfig returns the current configuration.
// Falls back to environment variables when LoadConfig has not run, which
// happens when a command is executed outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	varcharLen := config.DefaultVarcharLen
	if v := os.Getenv("FABRICSHIFT_VARCHAR_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			varcharLen = n
		}
	}
	return &config.Config{
		VarcharLen:   varcharLen,
		HistoryPath:  getEnvOrDefault("FABRICSHIFT_HISTORY_PATH", config.DefaultHistoryPath),
		History:      os.Getenv("FABRICSHIFT_HISTORY") == "true",
		Verbose:      os.Getenv("FABRICSHIFT_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("FABRICSHIFT_OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
