package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return notConfigured("sync service")
	}

	reports, err := syncOrchestrator.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, reports)
	}

	if len(reports) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}

	for i := range reports {
		r := &reports[i]
		trigger := r.Trigger
		if trigger == "" {
			trigger = domain.TriggerManual
		}
		cmd.Printf("%s  %s  %-9s  posted %d  deleted %d  skipped %d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.RunID,
			trigger,
			r.Posted,
			r.Deleted,
			len(r.Skipped),
			runStatus(r),
		)
		if r.Duration() > 0 {
			cmd.Printf("    took %s\n", r.Duration().Round(time.Second))
		}
	}
	return nil
}

// runStatus summarises how a run ended.
func runStatus(r *domain.SyncReport) string {
	switch {
	case r.Aborted:
		return "aborted"
	case len(r.Failed) > 0:
		return fmt.Sprintf("%d failed", len(r.Failed))
	}
	return "ok"
}
