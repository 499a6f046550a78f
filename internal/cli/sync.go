package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrz1836/repo-file-sync/internal/ai"
	"github.com/mrz1836/repo-file-sync/internal/config"
	"github.com/mrz1836/repo-file-sync/internal/db"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/git"
	"github.com/mrz1836/repo-file-sync/internal/sync"
	"github.com/mrz1836/repo-file-sync/internal/transform"
)

func createSyncCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync files to all configured target repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.SourceRoot, "source-root", ".", "Local checkout of the source repository")
	cmd.Flags().StringVar(&flags.WorkDir, "work-dir", "", "Directory for target clones (default: temp dir)")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0, "Repositories to sync in parallel (default: CPU count)")
	cmd.Flags().BoolVar(&flags.SkipCleanup, "skip-cleanup", false, "Keep working directories after the run")
	cmd.Flags().StringVar(&flags.HistoryDB, "history-db", flags.HistoryDB, "Path to the run history database (empty to disable)")

	return cmd
}

func runSync(cmd *cobra.Command, flags *Flags) error {
	ctx := cmd.Context()

	logger := logrus.New()
	flags.Log.ConfigureLogger(logger)

	cfg, err := config.Load(flags.Log.ConfigFile)
	if err != nil {
		return err
	}
	if flags.Log.Debug.Config {
		rules := 0
		for _, target := range cfg.Targets {
			rules += len(target.Files)
		}
		logger.WithFields(logrus.Fields{
			"config_file": flags.Log.ConfigFile,
			"targets":     len(cfg.Targets),
			"rules":       rules,
		}).Debug("Configuration loaded")
	}

	gitClient, err := git.NewClient(ctx, logger, &flags.Log)
	if err != nil {
		return err
	}
	ghClient, err := gh.NewClient(ctx, logger, &flags.Log, flags.Token)
	if err != nil {
		return err
	}

	var store *db.Store
	if flags.HistoryDB != "" && !flags.Log.DryRun {
		if store, err = db.Open(flags.HistoryDB); err != nil {
			logger.WithError(err).Warn("Run history disabled")
			store = nil
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	opts := &sync.Options{
		Token:       flags.Token,
		SourceRoot:  flags.SourceRoot,
		WorkDir:     flags.WorkDir,
		DryRun:      flags.Log.DryRun,
		Concurrency: flags.Concurrency,
		SkipCleanup: flags.SkipCleanup,
	}

	engine, err := sync.NewEngine(
		cfg, gitClient, ghClient,
		transform.NewRenderer(logger, &flags.Log),
		store, ai.NewGenerator(flags.AIKey, logger),
		opts, logger, &flags.Log,
	)
	if err != nil {
		return err
	}

	results, runErr := engine.Run(ctx)
	printSummary(cmd, results, flags.Log.DryRun)
	return runErr
}

// printSummary writes the colored per-repository outcome table, plus diff
// previews in dry-run mode.
func printSummary(cmd *cobra.Command, results []sync.RepoResult, dryRun bool) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	cmd.Println()
	for _, result := range results {
		switch {
		case result.Err != nil:
			cmd.Printf("%s %s: %v\n", red("✗"), result.Repo.FullName, result.Err)
		case result.Status == db.StatusSkipped && !dryRun:
			cmd.Printf("%s %s: no changes\n", yellow("-"), result.Repo.FullName)
		case dryRun:
			cmd.Printf("%s %s: %d file(s) would change\n", yellow("~"), result.Repo.FullName, len(result.ChangedFiles))
			printPreview(cmd, result)
		default:
			line := fmt.Sprintf("%s %s: synced %d file(s)", green("✓"), result.Repo.FullName, len(result.ChangedFiles))
			if result.PR != nil {
				line += " → " + result.PR.HTMLURL
			}
			cmd.Println(line)
		}
	}
}

func printPreview(cmd *cobra.Command, result sync.RepoResult) {
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, d := range result.Preview {
		cmd.Printf("\n%s\n", cyan("--- "+d.Path))
		for _, line := range strings.Split(d.Body, "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				cmd.Println(color.GreenString(line))
			case strings.HasPrefix(line, "-"):
				cmd.Println(color.RedString(line))
			default:
				cmd.Println(line)
			}
		}
	}
}
