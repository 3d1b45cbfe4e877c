// Package files handles reading query files and writing converted output.
// Output files sit next to the input with a "_fabric" suffix before the
// extension, so source files are never overwritten.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputSuffix is appended to the input filename stem for converted output.
const OutputSuffix = "_fabric"

// extensions accepted as query input.
var extensions = map[string]struct{}{
	".sql": {},
	".txt": {},
}

// Supported reports whether the path has a recognized query extension.
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadQuery reads a query file, rejecting unsupported extensions before
// touching the filesystem.
func ReadQuery(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("unsupported file type %q (want .sql or .txt)", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// OutputPath derives the converted-output path for an input path:
// queries/report.sql becomes queries/report_fabric.sql. An input that
// already carries the suffix is returned unchanged so repeated runs do not
// stack suffixes.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	if strings.HasSuffix(stem, OutputSuffix) {
		return input
	}
	return stem + OutputSuffix + ext
}

// WriteOutput writes converted SQL, creating parent directories as needed.
func WriteOutput(path, sql string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(sql), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Discover walks a directory and returns every supported query file,
// skipping files that already carry the output suffix.
func Discover(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !Supported(path) {
			return nil
		}
		ext := filepath.Ext(path)
		if strings.HasSuffix(strings.TrimSuffix(path, ext), OutputSuffix) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return found, nil
}
