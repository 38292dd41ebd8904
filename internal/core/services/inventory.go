package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

const categoryPrefix = "Category:"

// OriginInventory lists the publishable titles of the origin wiki.
type OriginInventory struct {
	origin  driven.OriginWiki
	publish domain.PublishSettings
}

// NewOriginInventory creates an inventory lister.
func NewOriginInventory(origin driven.OriginWiki, publish domain.PublishSettings) *OriginInventory {
	return &OriginInventory{
		origin:  origin,
		publish: publish,
	}
}

// List returns every publishable page with its latest revision timestamp.
// Author pages are flagged; category pages and configured non-article
// pages are left out. Unpublished pages are left out unless the
// deployment shows them.
func (inv *OriginInventory) List(ctx context.Context) ([]domain.InventoryEntry, error) {
	pages, err := inv.origin.AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list origin pages: %w", err)
	}

	authorTitles, err := inv.origin.CategoryMembers(ctx, inv.publish.AuthorsCategory)
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", inv.publish.AuthorsCategory, err)
	}
	authors := toSet(authorTitles)

	var published map[string]bool
	if !inv.publish.ShowUnpublished {
		titles, err := inv.origin.CategoryMembers(ctx, inv.publish.PublishedCategory)
		if err != nil {
			return nil, fmt.Errorf("list %s members: %w", inv.publish.PublishedCategory, err)
		}
		published = toSet(titles)
	}

	excluded := inv.exclusions()
	entries := make([]domain.InventoryEntry, 0, len(pages))
	for _, p := range pages {
		if strings.HasPrefix(p.Title, categoryPrefix) || excluded[strings.ToLower(p.Title)] {
			continue
		}
		if published != nil && !published[p.Title] {
			continue
		}
		entries = append(entries, domain.InventoryEntry{
			Title:        p.Title,
			LastModified: p.LastModified,
			IsAuthor:     authors[p.Title],
		})
	}

	logger.Debug("Origin inventory: %d of %d pages", len(entries), len(pages))
	return entries, nil
}

// exclusions builds a new set of non-article titles on every call.
func (inv *OriginInventory) exclusions() map[string]bool {
	set := make(map[string]bool, len(inv.publish.NonArticleTitles))
	for _, t := range inv.publish.NonArticleTitles {
		set[strings.ToLower(t)] = true
	}
	return set
}

func toSet(titles []string) map[string]bool {
	set := make(map[string]bool, len(titles))
	for _, t := range titles {
		set[t] = true
	}
	return set
}
