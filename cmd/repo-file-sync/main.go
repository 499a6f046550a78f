// Package main is the entry point for the repo-file-sync CLI tool.
package main

import (
	"os"

	"github.com/mrz1836/repo-file-sync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
