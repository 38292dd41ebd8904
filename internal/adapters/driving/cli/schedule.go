package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

const stopRetryInterval = 100 * time.Millisecond

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run index sync on a schedule",
	Long: `Runs the scheduler in the foreground, syncing the search index at the
configured interval (sync.interval). Edits to the configuration file are
picked up without a restart. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return notConfigured("scheduler")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan struct{}, 1)
	if configWatcher != nil {
		go configWatcher.Run(ctx, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}

	for {
		current := scheduler
		printScheduleStatus(ctx, cmd, current)
		errCh := make(chan error, 1)
		go func() {
			errCh <- current.Start(ctx)
		}()
		cmd.Println("Scheduler running. Press Ctrl+C to stop.")

		select {
		case err := <-errCh:
			_ = current.Stop()
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler failed: %w", err)
			}
			cmd.Println("Scheduler stopped.")
			return nil
		case <-reload:
			stopScheduler(current, errCh)
			if err := reloadServices(); err != nil {
				logger.Warn("keeping previous configuration: %v", err)
				continue
			}
			if scheduler == nil {
				return notConfigured("scheduler")
			}
			cmd.Println("Configuration changed, scheduler restarted.")
		}
	}
}

// printScheduleStatus shows the saved schedule and the report of the last
// scheduled run. Nothing is printed before the first start.
func printScheduleStatus(ctx context.Context, cmd *cobra.Command, s driving.Scheduler) {
	schedule, last, err := s.Status(ctx)
	if err != nil {
		logger.Warn("failed to read schedule: %v", err)
		return
	}
	if schedule == nil {
		return
	}
	cmd.Printf("Sync every %s, next at %s\n",
		schedule.Interval, schedule.NextRun.Local().Format("2006-01-02 15:04:05"))
	switch {
	case last != nil:
		cmd.Printf("Last scheduled run %s at %s: %s\n",
			last.RunID, last.StartedAt.Local().Format("2006-01-02 15:04:05"), runStatus(last))
	case schedule.LastError != "":
		cmd.Printf("Last scheduled run failed: %s\n", schedule.LastError)
	}
}

// stopScheduler stops s and waits for its Start call to return. Stop is
// retried because Start may not have begun when the first Stop lands.
func stopScheduler(s driving.Scheduler, errCh <-chan error) {
	for {
		if err := s.Stop(); err != nil {
			logger.Warn("failed to stop scheduler: %v", err)
		}
		select {
		case <-errCh:
			return
		case <-time.After(stopRetryInterval):
		}
	}
}

// reloadServices rebuilds services from the configuration. The previous
// services are kept if the rebuild fails.
func reloadServices() error {
	if bootstrap == nil {
		return nil
	}
	s, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	if err := shutdown(); err != nil {
		logger.Warn("failed to close previous services: %v", err)
	}
	// Keep the watcher that is already running.
	watcher := configWatcher
	SetServices(s)
	configWatcher = watcher
	return nil
}
