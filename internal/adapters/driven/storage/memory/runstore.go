package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu      sync.RWMutex
	reports []domain.SyncReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Save stores a copy of the report.
func (s *RunStore) Save(_ context.Context, report *domain.SyncReport) error {
	if report == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *report
	r.Skipped = append([]string(nil), report.Skipped...)
	r.Failed = append([]domain.TitleError(nil), report.Failed...)
	s.reports = append(s.reports, r)
	return nil
}

// List returns up to limit reports, newest first.
// A non-positive limit returns every report.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]domain.SyncReport, len(s.reports))
	copy(reports, s.reports)
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Get returns a copy of one report.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.SyncReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.reports {
		if s.reports[i].RunID == runID {
			r := s.reports[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Prune keeps the newest keep reports.
func (s *RunStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep < 0 || len(s.reports) <= keep {
		return nil
	}
	sort.SliceStable(s.reports, func(i, j int) bool {
		return s.reports[i].StartedAt.After(s.reports[j].StartedAt)
	})
	s.reports = s.reports[:keep]
	return nil
}
