package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs the index sync at the configured interval.
// The schedule survives restarts through the SchedulerStore, and every
// scheduled run links to its report in the RunStore.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	runs     driven.RunStore
	syncOrch driving.SyncOrchestrator

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	schedule *domain.SyncSchedule

	// tick is how often the schedule is checked.
	tick time.Duration
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	runs driven.RunStore,
	syncOrch driving.SyncOrchestrator,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		runs:     runs,
		syncOrch: syncOrch,
		tick:     time.Minute,
	}
}

// Start runs the scheduler loop. It blocks until Stop is called or ctx is
// cancelled, and returns ctx.Err() in the latter case.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.mu.Unlock()
		close(done)
	}()

	s.run(runCtx)
	return ctx.Err()
}

// Stop cancels a sync in progress and waits for Start to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Status returns the current schedule and the report of the last scheduled
// run. Both are nil before the scheduler has first started. The report is
// nil when the run left none or it has since been pruned.
func (s *Scheduler) Status(ctx context.Context) (*domain.SyncSchedule, *domain.SyncReport, error) {
	schedule := s.current()
	if schedule == nil {
		var err error
		if schedule, err = s.store.Schedule(ctx); err != nil || schedule == nil {
			return nil, nil, err
		}
	}
	if schedule.LastRunID == "" || s.runs == nil {
		return schedule, nil, nil
	}

	report, err := s.runs.Get(ctx, schedule.LastRunID)
	if errors.Is(err, domain.ErrNotFound) {
		return schedule, nil, nil
	}
	if err != nil {
		return schedule, nil, err
	}
	return schedule, report, nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	if !s.config.Active() {
		logger.Info("scheduler: index sync is disabled")
		<-ctx.Done()
		return
	}

	schedule, err := s.load(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to load schedule: %v", err)
		schedule = domain.NewSyncSchedule(s.config.Interval, time.Now())
	}
	s.publish(schedule)
	s.save(ctx, schedule)
	logger.Info("scheduler: sync every %s, next at %s",
		schedule.Interval, schedule.NextRun.Format(time.RFC3339))

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		if schedule.Due(time.Now()) {
			s.runSync(ctx, schedule)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// load reads the saved schedule and applies the configured interval.
func (s *Scheduler) load(ctx context.Context) (*domain.SyncSchedule, error) {
	schedule, err := s.store.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if schedule == nil {
		return domain.NewSyncSchedule(s.config.Interval, now), nil
	}
	schedule.Retime(s.config.Interval, now)
	return schedule, nil
}

// runSync performs one scheduled sync and records its outcome.
func (s *Scheduler) runSync(ctx context.Context, schedule *domain.SyncSchedule) {
	startedAt := time.Now()
	report, err := s.syncOrch.Run(ctx, domain.TriggerScheduled)
	schedule.Record(report, err, startedAt, time.Now())

	s.publish(schedule)
	s.save(context.WithoutCancel(ctx), schedule)

	if err != nil {
		logger.Warn("scheduler: sync %s failed: %v", schedule.LastRunID, err)
		return
	}
	logger.Info("scheduler: sync %s finished, next at %s",
		schedule.LastRunID, schedule.NextRun.Format(time.RFC3339))
}

func (s *Scheduler) save(ctx context.Context, schedule *domain.SyncSchedule) {
	if err := s.store.SaveSchedule(ctx, schedule); err != nil {
		logger.Warn("scheduler: failed to save schedule: %v", err)
	}
}

// publish makes a copy of schedule visible to Status.
func (s *Scheduler) publish(schedule *domain.SyncSchedule) {
	snapshot := *schedule
	s.mu.Lock()
	s.schedule = &snapshot
	s.mu.Unlock()
}

func (s *Scheduler) current() *domain.SyncSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return nil
	}
	snapshot := *s.schedule
	return &snapshot
}
