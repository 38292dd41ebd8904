package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores a run report, replacing any earlier report with the same id.
func (s *runStore) Save(ctx context.Context, report *domain.SyncReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, started_at, ended_at, aborted, report)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			aborted = excluded.aborted,
			report = excluded.report
	`, report.RunID, formatTime(report.StartedAt), formatNullableTime(report.EndedAt),
		boolToInt(report.Aborted), string(data))
	if err != nil {
		return fmt.Errorf("saving sync run: %w", err)
	}
	return nil
}

// List returns the most recent reports, newest first.
// A non-positive limit returns every report.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.SyncReport, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT report FROM sync_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	reports := []domain.SyncReport{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		var report domain.SyncReport
		if err := json.Unmarshal([]byte(data), &report); err != nil {
			return nil, fmt.Errorf("unmarshalling sync run: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}
	return reports, nil
}

// Get returns one report.
func (s *runStore) Get(ctx context.Context, runID string) (*domain.SyncReport, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT report FROM sync_runs WHERE id = ?", runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying sync run: %w", err)
	}

	var report domain.SyncReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling sync run: %w", err)
	}
	return &report, nil
}

// Prune keeps the newest keep reports. A schedule linked to a removed
// report loses the link.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return nil
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning sync runs: %w", err)
	}
	return nil
}
