package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// searchIndex implements driven.SearchIndex.
type searchIndex struct {
	store *Store
}

var _ driven.SearchIndex = (*searchIndex)(nil)

// List returns every indexed title of the given kind, ordered by title.
func (s *searchIndex) List(ctx context.Context, kind domain.DocKind) ([]domain.InventoryEntry, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT title, last_modified FROM documents WHERE kind = ? ORDER BY title", string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var entries []domain.InventoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var title, lastModified string
		if err := rows.Scan(&title, &lastModified); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		entries = append(entries, domain.InventoryEntry{
			Title:        title,
			LastModified: parseTime(lastModified),
			IsAuthor:     kind == domain.KindAuthor,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return entries, nil
}

// Get returns one indexed document with its source identifiers in page order.
func (s *searchIndex) Get(ctx context.Context, title string) (*driven.IndexDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT title, kind, body, categories, authors, published, last_modified
		FROM documents WHERE title = ?
	`, title)

	doc, err := scanIndexDocument(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT source_id FROM document_sources WHERE title = ? ORDER BY position", title)
	if err != nil {
		return nil, fmt.Errorf("querying document sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document source: %w", err)
		}
		doc.SourceIDs = append(doc.SourceIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document sources: %w", err)
	}
	return doc, nil
}

// Upsert replaces the document, its sources and their links in one transaction.
func (s *searchIndex) Upsert(ctx context.Context, doc driven.IndexDocument, sources []domain.SourceRecord) error {
	if doc.Title == "" {
		return fmt.Errorf("%w: document has no title", domain.ErrInvalidInput)
	}

	categories, err := json.Marshal(nonNil(doc.Categories))
	if err != nil {
		return fmt.Errorf("marshalling categories: %w", err)
	}
	authors, err := json.Marshal(doc.Authors)
	if err != nil {
		return fmt.Errorf("marshalling authors: %w", err)
	}

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		for _, src := range sources {
			record, err := json.Marshal(src)
			if err != nil {
				return fmt.Errorf("marshalling source %s: %w", src.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sources (id, kind, record) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, record = excluded.record
			`, src.ID, string(src.Kind), string(record)); err != nil {
				return fmt.Errorf("saving source %s: %w", src.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (title, kind, body, categories, authors, published, last_modified)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(title) DO UPDATE SET
				kind = excluded.kind,
				body = excluded.body,
				categories = excluded.categories,
				authors = excluded.authors,
				published = excluded.published,
				last_modified = excluded.last_modified
		`, doc.Title, string(doc.Kind), doc.Body, string(categories), string(authors),
			boolToInt(doc.Published), formatTime(doc.LastModified)); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM document_sources WHERE title = ?", doc.Title); err != nil {
			return fmt.Errorf("clearing document sources: %w", err)
		}
		for pos, id := range doc.SourceIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO document_sources (title, source_id, position) VALUES (?, ?, ?)
			`, doc.Title, id, pos); err != nil {
				return fmt.Errorf("linking source %s: %w", id, err)
			}
		}
		return nil
	})
}

// Delete removes the title and its source links.
func (s *searchIndex) Delete(ctx context.Context, title string) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM document_sources WHERE title = ?", title); err != nil {
			return fmt.Errorf("deleting document sources: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE title = ?", title); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		return nil
	})
}

// Close is a no-op; the owning Store closes the database.
func (s *searchIndex) Close() error {
	return nil
}

// Source returns a stored primary source.
func (s *Store) Source(ctx context.Context, id string) (*domain.SourceRecord, error) {
	var record string
	err := s.db.QueryRowContext(ctx, "SELECT record FROM sources WHERE id = ?", id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying source: %w", err)
	}

	var src domain.SourceRecord
	if err := json.Unmarshal([]byte(record), &src); err != nil {
		return nil, fmt.Errorf("unmarshalling source %s: %w", id, err)
	}
	return &src, nil
}

// scanIndexDocument scans a single document row.
func scanIndexDocument(row *sql.Row) (*driven.IndexDocument, error) {
	var doc driven.IndexDocument
	var kind, categories, authors, lastModified string
	var published int

	if err := row.Scan(&doc.Title, &kind, &doc.Body, &categories, &authors,
		&published, &lastModified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Kind = domain.DocKind(kind)
	doc.Published = published == 1
	doc.LastModified = parseTime(lastModified)
	if err := json.Unmarshal([]byte(categories), &doc.Categories); err != nil {
		return nil, fmt.Errorf("unmarshalling categories: %w", err)
	}
	if err := json.Unmarshal([]byte(authors), &doc.Authors); err != nil {
		return nil, fmt.Errorf("unmarshalling authors: %w", err)
	}
	return &doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
