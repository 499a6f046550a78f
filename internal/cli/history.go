package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrz1836/repo-file-sync/internal/db"
)

func createHistoryCmd(flags *Flags) *cobra.Command {
	var (
		limit  int
		target string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := db.Open(flags.HistoryDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var runs []db.SyncRun
			if target != "" {
				runs, err = store.RunsForTarget(target, limit)
			} else {
				runs, err = store.RecentRuns(limit)
			}
			if err != nil {
				return err
			}

			printRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show")
	cmd.Flags().StringVar(&target, "target", "", "Only show runs for this target repository")

	return cmd
}

func printRuns(cmd *cobra.Command, runs []db.SyncRun) {
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded")
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, run := range runs {
		status := run.Status
		switch run.Status {
		case db.StatusSynced:
			status = green(status)
		case db.StatusSkipped:
			status = yellow(status)
		case db.StatusFailed:
			status = red(status)
		}

		cmd.Printf("%s  %-8s %s", run.CreatedAt.Format(time.RFC3339), status, run.TargetRepo)
		if run.PRURL != "" {
			cmd.Printf("  %s", run.PRURL)
		}
		if run.Error != "" {
			cmd.Printf("  (%s)", run.Error)
		}
		cmd.Println()
	}
}
