package domain

import "time"

// RunTrigger records what started a sync run.
type RunTrigger string

const (
	// TriggerManual is a run started from the command line.
	TriggerManual RunTrigger = "manual"

	// TriggerScheduled is a run started by the scheduler.
	TriggerScheduled RunTrigger = "scheduled"
)

// SyncSchedule is the persisted state of the periodic index sync.
type SyncSchedule struct {
	// Interval is the gap between the end of one run and the start of the next.
	Interval time.Duration

	NextRun time.Time
	LastRun time.Time

	// LastRunID is the report of the most recent scheduled run. It is empty
	// when that run failed before a report was written.
	LastRunID string

	// LastError is the error of the most recent run, if it failed.
	LastError string

	LastSuccess time.Time
}

// NewSyncSchedule returns a schedule whose first run is one interval after now.
func NewSyncSchedule(interval time.Duration, now time.Time) *SyncSchedule {
	return &SyncSchedule{
		Interval: interval,
		NextRun:  now.Add(interval),
	}
}

// Due reports whether a run should start at now.
func (s *SyncSchedule) Due(now time.Time) bool {
	return !now.Before(s.NextRun)
}

// Retime applies a changed interval. The next run is counted from now.
func (s *SyncSchedule) Retime(interval time.Duration, now time.Time) {
	if s.Interval == interval {
		return
	}
	s.Interval = interval
	s.NextRun = now.Add(interval)
}

// Record stores the outcome of a run that ended at endedAt.
// report may be nil when the run never started.
func (s *SyncSchedule) Record(report *SyncReport, err error, startedAt, endedAt time.Time) {
	s.LastRun = startedAt
	s.NextRun = endedAt.Add(s.Interval)
	s.LastRunID = ""
	if report != nil {
		s.LastRunID = report.RunID
	}
	if err != nil {
		s.LastError = err.Error()
		return
	}
	s.LastError = ""
	s.LastSuccess = endedAt
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Interval is how often the index sync runs.
	Interval time.Duration
}

// Active reports whether scheduled syncs should run at all.
func (c SchedulerConfig) Active() bool {
	return c.Enabled && c.Interval > 0
}

// SchedulerConfigFor returns a config running the index sync at the given
// interval. A non-positive interval disables it.
func SchedulerConfigFor(interval time.Duration) SchedulerConfig {
	return SchedulerConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}
}
