package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
	"github.com/custodia-labs/wikiprox/internal/logger"
	"github.com/custodia-labs/wikiprox/internal/rewrite"
	"github.com/custodia-labs/wikiprox/internal/sources"
)

// Ensure PageService implements the interface.
var _ driving.Publisher = (*PageService)(nil)

// PageService renders origin pages into publishable documents.
type PageService struct {
	origin   driven.OriginWiki
	resolver *sources.Resolver
	pipeline *rewrite.Pipeline
	publish  domain.PublishSettings
}

// NewPageService creates a page service using the default rewrite pipeline.
func NewPageService(
	origin driven.OriginWiki,
	catalog driven.SourceCatalog,
	publish domain.PublishSettings,
) *PageService {
	return &PageService{
		origin:   origin,
		resolver: sources.NewResolver(catalog),
		pipeline: rewrite.Default(),
		publish:  publish,
	}
}

// Render fetches a page, resolves its primary sources and rewrites its body.
//
// Any failure to fetch the page is reported as domain.ErrNotFound; the
// underlying cause stays in the chain for callers that need it.
func (s *PageService) Render(
	ctx context.Context,
	title string,
	opts domain.RenderOptions,
) (*domain.PublishableDocument, error) {
	page, err := s.origin.Page(ctx, title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("fetch %q: %w", title, err)
		}
		return nil, fmt.Errorf("fetch %q: %w: %w", title, domain.ErrNotFound, err)
	}

	published := page.Published || page.HasCategory(s.publish.PublishedCategory)
	if !published && !s.publish.ShowUnpublished {
		return nil, fmt.Errorf("%q: %w", title, domain.ErrUnpublished)
	}

	records, err := s.resolver.Resolve(ctx, page.Images)
	if err != nil {
		if opts.StrictSources {
			return nil, fmt.Errorf("render %q: %w", title, err)
		}
		logger.Warn("Rendering %q without sources: %v", title, err)
		records = []domain.SourceRecord{}
	}

	doc, err := rewrite.Parse(page.Body)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}
	authors := rewrite.ExtractAuthors(doc)

	s.pipeline.Apply(doc, rewrite.Options{
		SourceIDs:      sources.IDSet(records),
		Printed:        opts.Printed,
		StatusMarkers:  s.publish.StatusMarkers,
		LegacyPrefixes: s.publish.LegacyPrefixes,
	})
	body, err := rewrite.Body(doc)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}

	return &domain.PublishableDocument{
		Title:        page.Title,
		Kind:         domain.KindOf(page.HasCategory(s.publish.AuthorsCategory)),
		Body:         body,
		Sources:      records,
		Categories:   page.Categories,
		Authors:      authors,
		Published:    published,
		LastModified: page.LastModified,
	}, nil
}
