package driven

import (
	"context"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// SourceCatalog is the external primary-source catalog.
type SourceCatalog interface {
	// Lookup returns the records matching any of the identifiers in one round trip.
	// Identifiers with no record are absent from the result. Order is not
	// guaranteed.
	Lookup(ctx context.Context, ids []string) ([]domain.SourceRecord, error)
}
