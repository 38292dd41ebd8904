package domain

import "time"

// TitleError records why a single title could not be processed.
type TitleError struct {
	Title string
	Err   string
}

// SyncReport summarises one sync run.
type SyncReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Trigger says whether the run was started by hand or by the scheduler.
	Trigger RunTrigger

	StartedAt time.Time
	EndedAt   time.Time

	// PlannedUpserts and PlannedDeletes are the sizes of the plan.
	PlannedUpserts int
	PlannedDeletes int

	// Posted is the count of documents written to the index.
	Posted int

	// Deleted is the count of titles removed from the index.
	Deleted int

	// Skipped lists titles that were not posted because the origin does
	// not flag them as published.
	Skipped []string

	// Failed lists titles whose processing failed.
	Failed []TitleError

	// Aborted is set when the run stopped scheduling titles early
	// because a dependency looked unreachable.
	Aborted     bool
	AbortReason string
}

// Success reports whether the run completed with no failures.
func (r *SyncReport) Success() bool {
	return !r.Aborted && len(r.Failed) == 0
}

// Duration returns how long the run took.
func (r *SyncReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
