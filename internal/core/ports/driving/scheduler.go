package driving

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// Scheduler runs the periodic index sync in the background.
type Scheduler interface {
	// Start runs scheduled syncs until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels a sync in progress and waits for Start to return.
	Stop() error

	// Status returns the schedule and the report of its last run.
	// Either is nil when nothing has been scheduled or run yet.
	Status(ctx context.Context) (*domain.SyncSchedule, *domain.SyncReport, error)
}
