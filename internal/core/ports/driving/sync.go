package driving

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// SyncOrchestrator keeps the search index consistent with the origin wiki.
type SyncOrchestrator interface {
	// Plan compares the origin and index inventories without changing anything.
	Plan(ctx context.Context) (*domain.SyncPlan, error)

	// Run plans and executes a sync. The report is returned even when the
	// run aborts early; err is set only for run-level failures.
	Run(ctx context.Context, trigger domain.RunTrigger) (*domain.SyncReport, error)

	// Status returns the state of the current run.
	Status(ctx context.Context) (*SyncStatus, error)

	// History returns recent run reports, newest first.
	History(ctx context.Context, limit int) ([]domain.SyncReport, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Running indicates if sync is currently in progress.
	Running bool

	// Planned is the number of titles in the current plan.
	Planned int

	// Processed is the count of titles handled so far.
	Processed int

	// ErrorCount is the number of failures so far.
	ErrorCount int
}
