package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/fabricshift/fabricshift/internal/files"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and convert changed query files",
		Long: `Watch a directory tree for .sql/.txt changes and convert each changed file
to its _fabric counterpart. Existing files are converted once on startup.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchDir(ctx, cmd, cc, dir)
		},
	}
	return cmd
}

func watchDir(ctx context.Context, cmd *cobra.Command, cc *CommandContext, dir string) error {
	// Initial pass over files already present.
	existing, err := files.Discover(dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		convertAndWrite(cmd, cc, path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cc.Logger.Info("watching for changes", "dir", dir)

	// Per-file debounce timers; editors fire several events per save.
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need watching too.
				if err := watchDirRecursive(watcher, event.Name); err == nil {
					cc.Logger.Debug("watching new path", "path", event.Name)
				}
			}
			name := event.Name
			if !files.Supported(name) || isOutputFile(name) {
				continue
			}

			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(100*time.Millisecond, func() {
				convertAndWrite(cmd, cc, name)
			})

		case err := <-watcher.Errors:
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

func convertAndWrite(cmd *cobra.Command, cc *CommandContext, path string) {
	raw, err := files.ReadQuery(path)
	if err != nil {
		cc.Logger.Error("reading file failed", "path", path, "error", err)
		return
	}
	res := convertOne(cc, path, raw)
	out := files.OutputPath(path)
	if err := files.WriteOutput(out, res.SQL); err != nil {
		cc.Logger.Error("writing output failed", "path", out, "error", err)
		return
	}
	res.Output = out
	renderReport(cmd.ErrOrStderr(), res)
}

// isOutputFile reports whether the path already carries the output suffix,
// so converted files do not trigger another conversion.
func isOutputFile(path string) bool {
	ext := filepath.Ext(path)
	return strings.HasSuffix(strings.TrimSuffix(path, ext), files.OutputSuffix)
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
// Non-directory paths are ignored.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
