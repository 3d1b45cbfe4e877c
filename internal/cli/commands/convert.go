package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fabricshift/fabricshift/internal/files"
	"github.com/fabricshift/fabricshift/pkg/clean"
	"github.com/fabricshift/fabricshift/pkg/convert"
)

// maxConcurrentFiles bounds the conversion worker pool.
const maxConcurrentFiles = 8

// fileResult pairs one input with its conversion outcome.
type fileResult struct {
	Path     string           `json:"path"`
	Output   string           `json:"output_path,omitempty"`
	SQL      string           `json:"converted_sql"`
	Metrics  convert.Snapshot `json:"metrics"`
	CleanErr string           `json:"clean_error,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert Tableau SQL to Fabric T-SQL",
		Long: `Convert one or more .sql/.txt files, or standard input when no files are
given. Converted output is written next to each input with a _fabric suffix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				return convertStdin(cmd, cc)
			}
			return convertFiles(cmd, cc, args, toStdout)
		},
	}

	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write converted SQL to stdout instead of _fabric files")
	return cmd
}

// convertStdin converts standard input. Output always goes to stdout; there
// is no input file to sit next to.
func convertStdin(cmd *cobra.Command, cc *CommandContext) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	res := convertOne(cc, "stdin", string(raw))

	if cc.Cfg.OutputFormat == "json" {
		return renderJSON(cmd.OutOrStdout(), []fileResult{res})
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.SQL)
	renderReport(cmd.ErrOrStderr(), res)
	return nil
}

func convertFiles(cmd *cobra.Command, cc *CommandContext, paths []string, toStdout bool) error {
	results := make([]fileResult, len(paths))

	eg := errgroup.Group{}
	eg.SetLimit(maxConcurrentFiles)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			raw, err := files.ReadQuery(path)
			if err != nil {
				return err
			}
			res := convertOne(cc, path, raw)
			if !toStdout {
				out := files.OutputPath(path)
				if err := files.WriteOutput(out, res.SQL); err != nil {
					return err
				}
				res.Output = out
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if cc.Cfg.OutputFormat == "json" {
		return renderJSON(cmd.OutOrStdout(), results)
	}
	for _, res := range results {
		if toStdout {
			fmt.Fprintln(cmd.OutOrStdout(), res.SQL)
		}
		renderReport(cmd.ErrOrStderr(), res)
	}
	return nil
}

// convertOne cleans, converts, and optionally records one input.
func convertOne(cc *CommandContext, source, raw string) fileResult {
	prepared := clean.Prepare(raw)

	res := fileResult{Path: source}
	if prepared.Err != nil {
		// Conversion still runs; it returns the input with a flag on
		// structural failure.
		res.CleanErr = prepared.Err.Error()
	}

	result := cc.Converter.Convert(prepared.Cleaned)
	res.SQL = result.SQL
	res.Metrics = result.Metrics.Snapshot()

	if cc.Store != nil {
		if _, err := cc.Store.Record(source, raw, result.SQL, res.Metrics); err != nil {
			cc.Logger.Warn("recording conversion failed", "source", source, "err", err)
		}
	}
	return res
}
