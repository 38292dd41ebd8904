package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Resolver builds the source list of a page from its embedded images.
type Resolver struct {
	catalog driven.SourceCatalog
}

// NewResolver creates a resolver backed by the given catalog.
func NewResolver(catalog driven.SourceCatalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the catalog records referenced by uris, in order of first
// appearance and without duplicates.
//
// A non-success catalog response yields an empty list and no error.
// Timeouts and connection failures are returned wrapped so the caller can
// decide whether to render without sources.
func (r *Resolver) Resolve(ctx context.Context, uris []string) ([]domain.SourceRecord, error) {
	ids := IdentifiersOf(uris)
	if len(ids) == 0 {
		return []domain.SourceRecord{}, nil
	}

	records, err := r.catalog.Lookup(ctx, unique(ids))
	if err != nil {
		if domain.IsConnectivity(err) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("resolve sources: %w", err)
		}
		logger.Warn("Source lookup failed, continuing without sources: %v", err)
		return []domain.SourceRecord{}, nil
	}

	byID := make(map[string]domain.SourceRecord, len(records))
	for _, rec := range records {
		if _, ok := byID[rec.ID]; !ok {
			byID[rec.ID] = rec
		}
	}

	result := make([]domain.SourceRecord, 0, len(byID))
	seen := make(map[string]bool, len(byID))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, rec)
	}

	logger.Debug("Resolved %d of %d source identifiers", len(result), len(ids))
	return result, nil
}

// IDSet returns the identifiers of records as a set.
func IDSet(records []domain.SourceRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		set[rec.ID] = struct{}{}
	}
	return set
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
