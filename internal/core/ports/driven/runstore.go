package driven

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// RunStore keeps the history of sync runs.
type RunStore interface {
	// Save stores a finished run report.
	Save(ctx context.Context, report *domain.SyncReport) error

	// Get returns one report.
	// Returns domain.ErrNotFound if the run is unknown or was pruned.
	Get(ctx context.Context, runID string) (*domain.SyncReport, error)

	// List returns the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]domain.SyncReport, error)

	// Prune keeps the newest keep reports and removes the rest.
	Prune(ctx context.Context, keep int) error
}
