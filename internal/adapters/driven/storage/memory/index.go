package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// Ensure SearchIndex implements the interface.
var _ driven.SearchIndex = (*SearchIndex)(nil)

// SearchIndex is an in-memory implementation of driven.SearchIndex.
type SearchIndex struct {
	mu        sync.RWMutex
	documents map[string]driven.IndexDocument
	sources   map[string]domain.SourceRecord
}

// NewSearchIndex creates a new in-memory search index.
func NewSearchIndex() *SearchIndex {
	return &SearchIndex{
		documents: make(map[string]driven.IndexDocument),
		sources:   make(map[string]domain.SourceRecord),
	}
}

// List returns the titles of the given kind, sorted.
func (s *SearchIndex) List(_ context.Context, kind domain.DocKind) ([]domain.InventoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.InventoryEntry, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Kind != kind {
			continue
		}
		entries = append(entries, domain.InventoryEntry{
			Title:        doc.Title,
			LastModified: doc.LastModified,
			IsAuthor:     doc.Kind == domain.KindAuthor,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Title < entries[j].Title })
	return entries, nil
}

// Get retrieves a document by title.
func (s *SearchIndex) Get(_ context.Context, title string) (*driven.IndexDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Upsert stores a document and its sources.
func (s *SearchIndex) Upsert(_ context.Context, doc driven.IndexDocument, sources []domain.SourceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range sources {
		s.sources[src.ID] = src
	}
	s.documents[doc.Title] = doc
	return nil
}

// Delete removes a document. Missing titles are ignored.
func (s *SearchIndex) Delete(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, title)
	return nil
}

// Source retrieves a stored source record.
func (s *SearchIndex) Source(id string) (domain.SourceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	return src, ok
}

// Len returns the number of indexed documents.
func (s *SearchIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Close is a no-op.
func (s *SearchIndex) Close() error {
	return nil
}
