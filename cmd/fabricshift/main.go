// Package main provides the fabricshift CLI.
package main

import (
	"os"

	"github.com/fabricshift/fabricshift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
