package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// mockOrigin implements driven.OriginWiki for testing.
type mockOrigin struct {
	mu          sync.Mutex
	pages       map[string]*domain.RawPage
	categories  map[string][]string
	pageErrs    map[string]error
	pageErr     error
	allPagesErr error
	categoryErr error
	fetched     []string
}

func newMockOrigin() *mockOrigin {
	return &mockOrigin{
		pages:      make(map[string]*domain.RawPage),
		categories: make(map[string][]string),
		pageErrs:   make(map[string]error),
	}
}

// addPage registers a page and files it under its categories.
func (m *mockOrigin) addPage(page *domain.RawPage) {
	m.pages[page.Title] = page
	for _, c := range page.Categories {
		m.categories[c] = append(m.categories[c], page.Title)
	}
}

func (m *mockOrigin) Page(_ context.Context, title string) (*domain.RawPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, title)
	if err, ok := m.pageErrs[title]; ok {
		return nil, err
	}
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	page, ok := m.pages[title]
	if !ok {
		return nil, fmt.Errorf("page %q: %w", title, domain.ErrNotFound)
	}
	p := *page
	return &p, nil
}

func (m *mockOrigin) AllPages(_ context.Context) ([]domain.InventoryEntry, error) {
	if m.allPagesErr != nil {
		return nil, m.allPagesErr
	}
	entries := make([]domain.InventoryEntry, 0, len(m.pages))
	for _, p := range m.pages {
		entries = append(entries, domain.InventoryEntry{Title: p.Title, LastModified: p.LastModified})
	}
	return entries, nil
}

func (m *mockOrigin) CategoryMembers(_ context.Context, category string) ([]string, error) {
	if m.categoryErr != nil {
		return nil, m.categoryErr
	}
	return m.categories[category], nil
}

// mockCatalog implements driven.SourceCatalog for testing.
type mockCatalog struct {
	records map[string]domain.SourceRecord
	err     error
}

func newMockCatalog(ids ...string) *mockCatalog {
	m := &mockCatalog{records: make(map[string]domain.SourceRecord)}
	for _, id := range ids {
		m.records[id] = domain.SourceRecord{ID: id, Kind: domain.MediaImage}
	}
	return m
}

func (m *mockCatalog) Lookup(_ context.Context, ids []string) ([]domain.SourceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.SourceRecord
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// failingIndex wraps a SearchIndex and fails writes.
type failingIndex struct {
	driven.SearchIndex
	upsertErr error
	listErr   error
}

func (f *failingIndex) Upsert(ctx context.Context, doc driven.IndexDocument, sources []domain.SourceRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.SearchIndex.Upsert(ctx, doc, sources)
}

func (f *failingIndex) List(ctx context.Context, kind domain.DocKind) ([]domain.InventoryEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.SearchIndex.List(ctx, kind)
}

// ts returns a fixed timestamp offset by n seconds.
func ts(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}

// Ensure mocks implement interfaces
var (
	_ driven.OriginWiki    = (*mockOrigin)(nil)
	_ driven.SourceCatalog = (*mockCatalog)(nil)
)
