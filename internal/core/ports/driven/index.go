package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// IndexDocument is the shape a page takes in the search index.
type IndexDocument struct {
	Title        string
	Kind         domain.DocKind
	Body         string
	Categories   []string
	SourceIDs    []string
	Authors      domain.AuthorInfo
	Published    bool
	LastModified time.Time
}

// NewIndexDocument builds the index shape of a publishable document.
func NewIndexDocument(doc *domain.PublishableDocument) IndexDocument {
	return IndexDocument{
		Title:        doc.Title,
		Kind:         doc.Kind,
		Body:         doc.Body,
		Categories:   doc.Categories,
		SourceIDs:    doc.SourceIDs(),
		Authors:      doc.Authors,
		Published:    doc.Published,
		LastModified: doc.LastModified,
	}
}

// SearchIndex is the secondary store kept consistent with the origin.
// Documents are keyed by title; both writes are idempotent.
type SearchIndex interface {
	// List returns every indexed title of the given kind with its timestamp.
	List(ctx context.Context, kind domain.DocKind) ([]domain.InventoryEntry, error)

	// Get returns one indexed document.
	// Returns domain.ErrNotFound if the title is not indexed.
	Get(ctx context.Context, title string) (*IndexDocument, error)

	// Upsert writes the document and its sources, replacing any previous
	// version of the title in a single step.
	Upsert(ctx context.Context, doc IndexDocument, sources []domain.SourceRecord) error

	// Delete removes the title. Deleting a missing title is not an error.
	Delete(ctx context.Context, title string) error

	// Close releases resources.
	Close() error
}
