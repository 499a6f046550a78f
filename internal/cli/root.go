// Package cli implements the command-line interface for repo-file-sync.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// Version is set at build time via -ldflags.
//
//nolint:gochecknoglobals // Build-time version injection
var Version = "dev"

// Flags holds all CLI flag values. Each command tree gets its own instance
// so tests can run commands in isolation.
type Flags struct {
	Log logging.LogConfig

	Token       string
	SourceRoot  string
	WorkDir     string
	Concurrency int
	SkipCleanup bool
	HistoryDB   string
	AIKey       string
}

// NewRootCmd creates the root command with an isolated flag set.
func NewRootCmd() *cobra.Command {
	flags := &Flags{
		Log: logging.LogConfig{
			ConfigFile: "sync.yml",
			LogLevel:   "info",
			LogFormat:  "text",
		},
		Token:     os.Getenv("GH_TOKEN"),
		AIKey:     os.Getenv("OPENAI_API_KEY"),
		HistoryDB: defaultHistoryPath(),
	}

	cmd := &cobra.Command{
		Use:   "repo-file-sync",
		Short: "Synchronize files from one repository to many",
		Long: `repo-file-sync synchronizes files and directories from a source
repository into target repositories on GitHub, publishing the result as a
branch plus pull request. With a GitHub App installation token, commits are
replayed through the Git Data API so the platform signs them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Log.ConfigFile, "config", "c", flags.Log.ConfigFile, "Path to configuration file")
	pf.BoolVar(&flags.Log.DryRun, "dry-run", false, "Preview changes without branching, pushing, or opening PRs")
	pf.StringVar(&flags.Log.LogLevel, "log-level", flags.Log.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.Log.LogFormat, "log-format", flags.Log.LogFormat, "Log format (text, json)")
	pf.CountVarP(&flags.Log.Verbose, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	pf.BoolVar(&flags.Log.Debug.Git, "debug-git", false, "Debug git command execution")
	pf.BoolVar(&flags.Log.Debug.API, "debug-api", false, "Debug GitHub API requests")
	pf.BoolVar(&flags.Log.Debug.Transform, "debug-transform", false, "Debug template rendering")
	pf.BoolVar(&flags.Log.Debug.Config, "debug-config", false, "Debug configuration loading")
	pf.StringVar(&flags.Token, "token", flags.Token, "GitHub token (default: GH_TOKEN)")

	cmd.AddCommand(createSyncCmd(flags))
	cmd.AddCommand(createHistoryCmd(flags))
	cmd.AddCommand(createVersionCmd())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "repo-file-sync.db"
	}
	return home + "/.repo-file-sync/history.db"
}

func createVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("repo-file-sync %s\n", Version)
		},
	}
}
