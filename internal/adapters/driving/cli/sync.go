package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
)

var (
	syncDryRun bool
	syncJSON   bool
)

// progressInterval is how often a running sync reports progress.
var progressInterval = 500 * time.Millisecond

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the search index with the wiki",
	Long: `Compares the published pages on the origin wiki with the search index,
posts new and changed pages and removes pages that are gone.
Use --dry-run to print the plan without changing the index.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "print the plan without changing the index")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the plan or report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return notConfigured("sync service")
	}

	ctx := cmd.Context()

	if syncDryRun {
		plan, err := syncOrchestrator.Plan(ctx)
		if err != nil {
			return fmt.Errorf("plan failed: %w", err)
		}
		if syncJSON {
			return outputJSON(cmd, plan)
		}
		outputPlan(cmd, plan)
		return nil
	}

	if !syncJSON {
		cmd.Println("Synchronising index...")
	}
	report, err := syncWithProgress(ctx, cmd, syncOrchestrator, !syncJSON)
	if report != nil {
		if syncJSON {
			if jsonErr := outputJSON(cmd, report); jsonErr != nil {
				return jsonErr
			}
		} else {
			outputReport(cmd, report)
		}
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
	showProgress bool,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := syncOrch.Run(ctx, domain.TriggerManual)
		done <- result{report: report, err: err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := -1
	for {
		select {
		case r := <-done:
			if showProgress && lastCount >= 0 {
				cmd.Println()
			}
			return r.report, r.err
		case <-ticker.C:
			if !showProgress {
				continue
			}
			// Best effort; a status error only skips this update.
			status, statusErr := syncOrch.Status(ctx)
			if statusErr == nil && status != nil && status.Running && status.Processed > lastCount {
				cmd.Printf("\rProcessed %d of %d titles (%d errors)",
					status.Processed, status.Planned, status.ErrorCount)
				lastCount = status.Processed
			}
		}
	}
}

func outputPlan(cmd *cobra.Command, plan *domain.SyncPlan) {
	if plan.Empty() {
		cmd.Println("Index is up to date.")
		return
	}
	upserts := plan.UpsertTitles()
	deletes := plan.DeleteTitles()
	cmd.Printf("%d to post, %d to delete\n", len(upserts), len(deletes))
	for _, title := range upserts {
		cmd.Printf("  + %s\n", title)
	}
	for _, title := range deletes {
		cmd.Printf("  - %s\n", title)
	}
}

func outputReport(cmd *cobra.Command, report *domain.SyncReport) {
	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration().Round(time.Millisecond))
	cmd.Printf("  Posted:  %d of %d\n", report.Posted, report.PlannedUpserts)
	cmd.Printf("  Deleted: %d of %d\n", report.Deleted, report.PlannedDeletes)
	if len(report.Skipped) > 0 {
		cmd.Printf("  Skipped (unpublished): %d\n", len(report.Skipped))
	}
	if len(report.Failed) > 0 {
		cmd.Printf("  Failed: %d\n", len(report.Failed))
		for _, f := range report.Failed {
			cmd.Printf("    %s: %s\n", f.Title, f.Err)
		}
	}
	if report.Aborted {
		cmd.Printf("  Aborted: %s\n", report.AbortReason)
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
