package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// Schedule returns the saved schedule.
// Returns nil and no error if none is saved.
func (s *schedulerStore) Schedule(ctx context.Context) (*domain.SyncSchedule, error) {
	var schedule domain.SyncSchedule
	var intervalSeconds int64
	var nextRun string
	var lastRun, lastRunID, lastError, lastSuccess sql.NullString

	err := s.store.db.QueryRowContext(ctx, `
		SELECT interval_seconds, next_run, last_run, last_run_id, last_error, last_success
		FROM sync_schedule WHERE id = 1
	`).Scan(&intervalSeconds, &nextRun, &lastRun, &lastRunID, &lastError, &lastSuccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync schedule: %w", err)
	}

	schedule.Interval = time.Duration(intervalSeconds) * time.Second
	schedule.NextRun = parseTime(nextRun)
	schedule.LastRun = parseNullableTime(lastRun)
	schedule.LastRunID = lastRunID.String
	schedule.LastError = lastError.String
	schedule.LastSuccess = parseNullableTime(lastSuccess)
	return &schedule, nil
}

// SaveSchedule persists the schedule. A LastRunID with no stored report
// is saved as empty.
func (s *schedulerStore) SaveSchedule(ctx context.Context, schedule *domain.SyncSchedule) error {
	if schedule == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_schedule (id, interval_seconds, next_run, last_run, last_run_id, last_error, last_success)
		VALUES (1, ?, ?, ?, (SELECT id FROM sync_runs WHERE id = ?), ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			last_run_id = excluded.last_run_id,
			last_error = excluded.last_error,
			last_success = excluded.last_success
	`, int64(schedule.Interval/time.Second), formatTime(schedule.NextRun),
		formatNullableTime(schedule.LastRun), schedule.LastRunID,
		nullString(schedule.LastError), formatNullableTime(schedule.LastSuccess))
	if err != nil {
		return fmt.Errorf("saving sync schedule: %w", err)
	}
	return nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
