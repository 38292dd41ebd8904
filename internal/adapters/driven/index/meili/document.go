package meili

import (
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	htmltext "github.com/custodia-labs/wikiprox/internal/normalisers/html"
)

// pageDocument is the stored shape of a page.
type pageDocument struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Kind         domain.DocKind `json:"kind"`
	Body         string         `json:"body"`
	Text         string         `json:"text"`
	Categories   []string       `json:"categories"`
	SourceIDs    []string       `json:"source_ids"`
	Authors      authors        `json:"authors"`
	Published    bool           `json:"published"`
	LastModified time.Time      `json:"last_modified"`
}

type authors struct {
	Display []string   `json:"display"`
	Parsed  [][]string `json:"parsed"`
}

func newPageDocument(doc driven.IndexDocument) pageDocument {
	return pageDocument{
		ID:           documentID(doc.Title),
		Title:        doc.Title,
		Kind:         doc.Kind,
		Body:         doc.Body,
		Text:         htmltext.Text(doc.Body),
		Categories:   doc.Categories,
		SourceIDs:    doc.SourceIDs,
		Authors:      authors{Display: doc.Authors.Display, Parsed: doc.Authors.Parsed},
		Published:    doc.Published,
		LastModified: doc.LastModified.UTC(),
	}
}

func (d pageDocument) indexDocument() driven.IndexDocument {
	return driven.IndexDocument{
		Title:        d.Title,
		Kind:         d.Kind,
		Body:         d.Body,
		Categories:   d.Categories,
		SourceIDs:    d.SourceIDs,
		Authors:      domain.AuthorInfo{Display: d.Authors.Display, Parsed: d.Authors.Parsed},
		Published:    d.Published,
		LastModified: d.LastModified,
	}
}
