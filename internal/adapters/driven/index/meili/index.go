// Package meili provides a search index adapter backed by Meilisearch.
package meili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

const (
	primaryKey = "id"

	// pageSize is the batch size used when listing documents.
	pageSize = 1000

	// taskPoll is how often task status is checked.
	taskPoll = 50 * time.Millisecond
)

// Config holds configuration for the Meilisearch index.
type Config struct {
	Host   string
	APIKey string

	// Name is the page index uid. Sources go to "<Name>-sources".
	Name string
}

// Index stores pages and their primary sources in two Meilisearch indexes.
type Index struct {
	client     meilisearch.ServiceManager
	pages      meilisearch.IndexManager
	sources    meilisearch.IndexManager
	pagesUID   string
	sourcesUID string
}

// New connects to Meilisearch and prepares both indexes.
func New(ctx context.Context, cfg Config) (*Index, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, wrapError("health", err)
	}

	idx := &Index{
		client:     client,
		pages:      client.Index(cfg.Name),
		sources:    client.Index(cfg.Name + "-sources"),
		pagesUID:   cfg.Name,
		sourcesUID: cfg.Name + "-sources",
	}
	if err := idx.ensure(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ensure creates missing indexes and sets filterable attributes.
func (i *Index) ensure(ctx context.Context) error {
	indexes := map[string]meilisearch.IndexManager{i.pagesUID: i.pages, i.sourcesUID: i.sources}
	for uid, index := range indexes {
		if _, err := index.FetchInfo(); err == nil {
			continue
		}
		info, err := i.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        uid,
			PrimaryKey: primaryKey,
		})
		if err != nil {
			return wrapError("create index", err)
		}
		if err := i.wait(ctx, index, info.TaskUID); err != nil {
			return err
		}
		logger.Info("Created Meilisearch index %s", uid)
	}

	info, err := i.pages.UpdateFilterableAttributes(&[]string{"kind", "title"})
	if err != nil {
		return wrapError("update filterable attributes", err)
	}
	if err := i.wait(ctx, i.pages, info.TaskUID); err != nil {
		return err
	}

	// Search plain text and titles, never the markup in body.
	info, err = i.pages.UpdateSearchableAttributes(&[]string{"title", "text", "categories"})
	if err != nil {
		return wrapError("update searchable attributes", err)
	}
	return i.wait(ctx, i.pages, info.TaskUID)
}

// List returns every indexed title of the given kind.
func (i *Index) List(ctx context.Context, kind domain.DocKind) ([]domain.InventoryEntry, error) {
	var entries []domain.InventoryEntry
	for offset := int64(0); ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var result meilisearch.DocumentsResult
		err := i.pages.GetDocuments(&meilisearch.DocumentsQuery{
			Offset: offset,
			Limit:  pageSize,
			Fields: []string{"title", "kind", "last_modified"},
			Filter: "kind = " + quote(string(kind)),
		}, &result)
		if err != nil {
			return nil, wrapError("list documents", err)
		}

		for _, raw := range result.Results {
			var doc pageDocument
			if err := remarshal(raw, &doc); err != nil {
				return nil, fmt.Errorf("meilisearch: decode document: %w", err)
			}
			entries = append(entries, domain.InventoryEntry{
				Title:        doc.Title,
				LastModified: doc.LastModified,
				IsAuthor:     doc.Kind == domain.KindAuthor,
			})
		}

		if int64(len(result.Results)) < pageSize {
			return entries, nil
		}
	}
}

// Get returns one indexed document.
func (i *Index) Get(_ context.Context, title string) (*driven.IndexDocument, error) {
	var doc pageDocument
	if err := i.pages.GetDocument(documentID(title), nil, &doc); err != nil {
		var meiliErr *meilisearch.Error
		if errors.As(err, &meiliErr) && meiliErr.StatusCode == 404 {
			return nil, fmt.Errorf("document %q: %w", title, domain.ErrNotFound)
		}
		return nil, wrapError("get document", err)
	}
	out := doc.indexDocument()
	return &out, nil
}

// Upsert replaces the document and adds its sources.
func (i *Index) Upsert(ctx context.Context, doc driven.IndexDocument, sources []domain.SourceRecord) error {
	if len(sources) > 0 {
		info, err := i.sources.AddDocuments(sources)
		if err != nil {
			return wrapError("add sources", err)
		}
		if err := i.wait(ctx, i.sources, info.TaskUID); err != nil {
			return err
		}
	}

	info, err := i.pages.AddDocuments([]pageDocument{newPageDocument(doc)})
	if err != nil {
		return wrapError("add document", err)
	}
	return i.wait(ctx, i.pages, info.TaskUID)
}

// Delete removes the title. Missing titles are not an error.
func (i *Index) Delete(ctx context.Context, title string) error {
	info, err := i.pages.DeleteDocument(documentID(title))
	if err != nil {
		return wrapError("delete document", err)
	}
	return i.wait(ctx, i.pages, info.TaskUID)
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// wait blocks until the task finishes and reports task failures.
func (i *Index) wait(ctx context.Context, index meilisearch.IndexManager, taskUID int64) error {
	task, err := index.WaitForTaskWithContext(ctx, taskUID, taskPoll)
	if err != nil {
		return wrapError("wait for task", err)
	}
	if task.Status == meilisearch.TaskStatusFailed {
		return fmt.Errorf("meilisearch: task %d failed: %v: %w", taskUID, task.Error, domain.ErrUnavailable)
	}
	return nil
}

// documentID derives a stable primary key from a page title.
// Titles may contain characters Meilisearch rejects in ids.
func documentID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(title)).String()
}

// quote renders a filter string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// wrapError maps client errors onto the domain taxonomy.
func wrapError(op string, err error) error {
	return fmt.Errorf("meilisearch: %s: %w: %w", op, classify(err), err)
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrTimeout
	}

	var meiliErr *meilisearch.Error
	if errors.As(err, &meiliErr) {
		switch meiliErr.ErrCode {
		case meilisearch.MeilisearchTimeoutError:
			return domain.ErrTimeout
		case meilisearch.MeilisearchCommunicationError, meilisearch.MeilisearchMaxRetriesExceeded:
			return domain.ErrConnection
		}
		if meiliErr.StatusCode == 404 {
			return domain.ErrNotFound
		}
	}
	return domain.ErrUnavailable
}
