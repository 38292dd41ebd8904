package driven

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// SchedulerStore keeps the sync schedule across restarts, so a restarted
// scheduler neither repeats a run nor forgets one that is overdue.
type SchedulerStore interface {
	// Schedule returns the stored schedule.
	// Returns nil and no error if none has been saved yet.
	Schedule(ctx context.Context) (*domain.SyncSchedule, error)

	// SaveSchedule replaces the stored schedule.
	SaveSchedule(ctx context.Context, schedule *domain.SyncSchedule) error
}
