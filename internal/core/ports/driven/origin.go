package driven

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// OriginWiki is the content system of record.
//
// Errors are wrapped domain errors: ErrNotFound for a missing page,
// ErrTimeout and ErrConnection for connectivity problems, and
// ErrUnavailable for non-success responses.
type OriginWiki interface {
	// Page fetches one page with its rendered body, images and categories.
	Page(ctx context.Context, title string) (*domain.RawPage, error)

	// AllPages lists every page title with the timestamp of its latest revision.
	// IsAuthor is never set; use CategoryMembers to classify.
	AllPages(ctx context.Context) ([]domain.InventoryEntry, error)

	// CategoryMembers lists titles of pages tagged with the category.
	// The category is given without the "Category:" prefix.
	CategoryMembers(ctx context.Context, category string) ([]string, error)
}
