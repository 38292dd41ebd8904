package driving

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// Publisher turns origin pages into publishable documents.
type Publisher interface {
	// Render fetches, resolves and rewrites one page.
	// Returns domain.ErrNotFound if the origin has no such page and
	// domain.ErrUnpublished if the page may not be shown.
	Render(ctx context.Context, title string, opts domain.RenderOptions) (*domain.PublishableDocument, error)
}
