// Command gendocs generates markdown CLI reference pages from the cobra
// command tree. Run from the repository root:
//
//	go run ./scripts/gendocs -out docs/cli
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fabricshift/fabricshift/internal/cli"
)

func main() {
	outDir := flag.String("out", "docs/cli", "output directory for generated pages")
	flag.Parse()

	if err := generate(*outDir); err != nil {
		log.Fatal(err)
	}
}

func generate(outDir string) error {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()

	if err := writeIndex(rootCmd, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		if err := writeCommandPage(cmd, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func writeIndex(rootCmd *cobra.Command, outDir string) error {
	var b strings.Builder
	b.WriteString("# CLI Reference\n\n")
	b.WriteString(rootCmd.Long)
	b.WriteString("\n\n## Commands\n\n")
	b.WriteString("| Command | Description |\n|---|---|\n")
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		fmt.Fprintf(&b, "| [%s](%s.md) | %s |\n", cmd.Name(), cmd.Name(), cmd.Short)
	}
	b.WriteString("\n## Global flags\n\n")
	writeFlags(&b, rootCmd.PersistentFlags())
	return os.WriteFile(filepath.Join(outDir, "index.md"), []byte(b.String()), 0o644)
}

func writeCommandPage(cmd *cobra.Command, outDir string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# fabricshift %s\n\n", cmd.Name())
	if cmd.Long != "" {
		b.WriteString(cmd.Long)
	} else {
		b.WriteString(cmd.Short)
	}
	b.WriteString("\n\n## Usage\n\n```\n")
	b.WriteString(cmd.UseLine())
	b.WriteString("\n```\n")
	if cmd.Flags().HasAvailableFlags() {
		b.WriteString("\n## Flags\n\n")
		writeFlags(&b, cmd.Flags())
	}
	return os.WriteFile(filepath.Join(outDir, cmd.Name()+".md"), []byte(b.String()), 0o644)
}

func writeFlags(b *strings.Builder, flags *pflag.FlagSet) {
	b.WriteString("| Flag | Default | Description |\n|---|---|---|\n")
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		fmt.Fprintf(b, "| `%s` | `%s` | %s |\n", name, f.DefValue, f.Usage)
	})
}
