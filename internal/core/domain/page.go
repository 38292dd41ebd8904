package domain

import "time"

// DocKind separates author pages from article pages.
// The index stores both, and reconciliation treats them as separate scopes.
type DocKind string

const (
	// KindArticle is an encyclopedia article (any page that is not an author).
	KindArticle DocKind = "article"

	// KindAuthor is an author biography page.
	KindAuthor DocKind = "author"
)

// KindOf returns the kind for an author flag.
func KindOf(isAuthor bool) DocKind {
	if isAuthor {
		return KindAuthor
	}
	return KindArticle
}

// RawPage is a page as returned by the origin wiki.
// It is immutable once fetched.
type RawPage struct {
	// Title is the page title used in URLs.
	Title string

	// DisplayTitle is the title as the wiki renders it. May be empty.
	DisplayTitle string

	// Body is the rendered page HTML before rewriting.
	Body string

	// Images lists embedded image URIs in document order.
	Images []string

	// Categories lists the page's category tags without the "Category:" prefix.
	Categories []string

	// Published reports whether the origin flags the page as published.
	Published bool

	// LastModified is the timestamp of the latest revision.
	LastModified time.Time
}

// HasCategory reports whether the page carries the named category.
func (p *RawPage) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AuthorInfo holds the byline of an article.
type AuthorInfo struct {
	// Display holds author names as shown in the byline.
	Display []string

	// Parsed holds [surname, given name] pairs. A name that could not be
	// split is kept as a single element.
	Parsed [][]string
}

// PublishableDocument is the output of the rewrite pipeline.
type PublishableDocument struct {
	Title        string
	Kind         DocKind
	Body         string
	Sources      []SourceRecord
	Categories   []string
	Authors      AuthorInfo
	Published    bool
	LastModified time.Time
}

// SourceIDs returns the identifiers of the document's sources in order.
func (d *PublishableDocument) SourceIDs() []string {
	ids := make([]string, 0, len(d.Sources))
	for _, s := range d.Sources {
		ids = append(ids, s.ID)
	}
	return ids
}

// RenderOptions controls a single page render.
type RenderOptions struct {
	// Printed renders the print variant (no "back to top" links).
	Printed bool

	// StrictSources makes catalog timeouts and connection failures fail the
	// render instead of degrading to an empty source list.
	StrictSources bool
}
