package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

const manzanarBody = `<h1>Manzanar</h1>
<div id="authorByline"><b>Authored by <a href="/Tom_Coffman">Tom Coffman</a></b></div>
<div id="citationAuthor" style="display:none;">Coffman, Tom</div>
<div class="alert published">Ready</div>
<div class="thumb"><a class="image" href="/File:en-denshopd-i37-00239-1.jpg"><img src="/mediawiki/images/thumb/a/ab/en-denshopd-i37-00239-1.jpg/200px-en-denshopd-i37-00239-1.jpg"></a></div>
<h2>History<span class="mw-editsection"><a href="/mediawiki/index.php?title=Manzanar&amp;action=edit&amp;section=1">edit</a></span></h2>
<p>Text about <a href="/mediawiki/index.php/Owens_Valley">Owens Valley</a>.</p>`

func manzanarPage() *domain.RawPage {
	return &domain.RawPage{
		Title:        "Manzanar",
		Body:         manzanarBody,
		Images:       []string{"/mediawiki/images/thumb/a/ab/en-denshopd-i37-00239-1.jpg/200px-en-denshopd-i37-00239-1.jpg"},
		Categories:   []string{"Published", "Camps"},
		LastModified: ts(5),
	}
}

func newTestPageService(origin *mockOrigin, catalog *mockCatalog) *PageService {
	return NewPageService(origin, catalog, testPublishSettings())
}

func TestPageService_Render(t *testing.T) {
	origin := newMockOrigin()
	origin.addPage(manzanarPage())
	service := newTestPageService(origin, newMockCatalog("en-denshopd-i37-00239-1"))

	doc, err := service.Render(context.Background(), "Manzanar", domain.RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Manzanar", doc.Title)
	assert.Equal(t, domain.KindArticle, doc.Kind)
	assert.True(t, doc.Published)
	assert.Equal(t, ts(5), doc.LastModified)
	assert.Equal(t, []string{"en-denshopd-i37-00239-1"}, doc.SourceIDs())
	assert.Equal(t, []string{"Tom Coffman"}, doc.Authors.Display)
	assert.Equal(t, [][]string{{"Coffman", "Tom"}}, doc.Authors.Parsed)

	assert.NotContains(t, doc.Body, "<h1>")
	assert.NotContains(t, doc.Body, "en-denshopd-i37-00239-1")
	assert.NotContains(t, doc.Body, "mw-editsection")
	assert.NotContains(t, doc.Body, "Ready")
	assert.Contains(t, doc.Body, `href="/Owens_Valley"`)
	assert.Contains(t, doc.Body, "toplink")
}

func TestPageService_Render_Printed(t *testing.T) {
	origin := newMockOrigin()
	origin.addPage(manzanarPage())
	service := newTestPageService(origin, newMockCatalog())

	doc, err := service.Render(context.Background(), "Manzanar", domain.RenderOptions{Printed: true})
	require.NoError(t, err)
	assert.NotContains(t, doc.Body, "toplink")
}

func TestPageService_Render_Author(t *testing.T) {
	origin := newMockOrigin()
	origin.addPage(&domain.RawPage{Title: "Tom Coffman", Body: "<p>Bio</p>", Categories: []string{"Published", "Authors"}})
	service := newTestPageService(origin, newMockCatalog())

	doc, err := service.Render(context.Background(), "Tom Coffman", domain.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.KindAuthor, doc.Kind)
}

func TestPageService_Render_NotFound(t *testing.T) {
	service := newTestPageService(newMockOrigin(), newMockCatalog())

	_, err := service.Render(context.Background(), "Missing", domain.RenderOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPageService_Render_UnreachableOriginIsNotFound(t *testing.T) {
	origin := newMockOrigin()
	origin.pageErr = fmt.Errorf("parse: %w", domain.ErrTimeout)
	service := newTestPageService(origin, newMockCatalog())

	_, err := service.Render(context.Background(), "Manzanar", domain.RenderOptions{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, domain.IsConnectivity(err), "cause must stay visible")
}

func TestPageService_Render_Unpublished(t *testing.T) {
	origin := newMockOrigin()
	origin.addPage(&domain.RawPage{Title: "Draft", Body: "<p>Draft</p>"})

	t.Run("hidden", func(t *testing.T) {
		service := newTestPageService(origin, newMockCatalog())
		_, err := service.Render(context.Background(), "Draft", domain.RenderOptions{})
		assert.ErrorIs(t, err, domain.ErrUnpublished)
	})

	t.Run("shown when allowed", func(t *testing.T) {
		publish := testPublishSettings()
		publish.ShowUnpublished = true
		service := NewPageService(origin, newMockCatalog(), publish)

		doc, err := service.Render(context.Background(), "Draft", domain.RenderOptions{})
		require.NoError(t, err)
		assert.False(t, doc.Published)
	})
}

func TestPageService_Render_PublishedFlag(t *testing.T) {
	origin := newMockOrigin()
	origin.addPage(&domain.RawPage{Title: "Flagged", Body: "<p>x</p>", Published: true})
	service := newTestPageService(origin, newMockCatalog())

	doc, err := service.Render(context.Background(), "Flagged", domain.RenderOptions{})
	require.NoError(t, err)
	assert.True(t, doc.Published)
}

func TestPageService_Render_CatalogFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		strict  bool
		wantErr error
	}{
		{"unavailable degrades", fmt.Errorf("status 500: %w", domain.ErrUnavailable), true, nil},
		{"timeout degrades when lenient", fmt.Errorf("lookup: %w", domain.ErrTimeout), false, nil},
		{"timeout fails when strict", fmt.Errorf("lookup: %w", domain.ErrTimeout), true, domain.ErrTimeout},
		{"connection fails when strict", fmt.Errorf("lookup: %w", domain.ErrConnection), true, domain.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := newMockOrigin()
			origin.addPage(manzanarPage())
			catalog := &mockCatalog{err: tt.err}
			service := newTestPageService(origin, catalog)

			doc, err := service.Render(context.Background(), "Manzanar", domain.RenderOptions{StrictSources: tt.strict})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Empty(t, doc.Sources)
			// Unresolved media stays in the body.
			assert.Contains(t, doc.Body, "en-denshopd-i37-00239-1")
		})
	}
}
