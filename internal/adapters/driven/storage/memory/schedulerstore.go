package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
type SchedulerStore struct {
	mu       sync.RWMutex
	schedule *domain.SyncSchedule
}

// NewSchedulerStore creates a new in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{}
}

// Schedule returns a copy of the saved schedule, or nil if none is saved.
func (s *SchedulerStore) Schedule(_ context.Context) (*domain.SyncSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schedule == nil {
		return nil, nil
	}
	schedule := *s.schedule
	return &schedule, nil
}

// SaveSchedule replaces the saved schedule with a copy of schedule.
func (s *SchedulerStore) SaveSchedule(_ context.Context, schedule *domain.SyncSchedule) error {
	if schedule == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *schedule
	s.schedule = &saved
	return nil
}
