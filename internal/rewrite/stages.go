package rewrite

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/wikiprox/internal/sources"
)

// Stage names.
const (
	StageStripTitleHeading   = "strip-title-heading"
	StageStripComments       = "strip-comments"
	StageStripEditLinks      = "strip-edit-links"
	StageRewriteLinks        = "rewrite-links"
	StageRewritePagination   = "rewrite-pagination"
	StageStripStatusMarkers  = "strip-status-markers"
	StageTopLinks            = "top-links"
	StageStripPrimarySources = "strip-primary-sources"
)

// topLinkHTML is inserted between sections.
const topLinkHTML = `<div class="toplink"><a href="#top"><i class="icon-chevron-up"></i> Top</a></div>`

// DefaultStages returns the standard stages in the order they must run.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageStripTitleHeading, Apply: stripTitleHeading},
		{Name: StageStripComments, Apply: stripComments},
		{Name: StageStripEditLinks, Apply: stripEditLinks},
		{Name: StageRewriteLinks, Apply: rewriteLinks},
		{Name: StageRewritePagination, Apply: rewritePagination},
		{Name: StageStripStatusMarkers, Apply: stripStatusMarkers},
		{Name: StageTopLinks, Apply: addTopLinks},
		{Name: StageStripPrimarySources, Apply: stripPrimarySources},
	}
}

// stripTitleHeading removes h1 headings. Static pages repeat their title as
// an h1 that duplicates the one the reader already sees.
func stripTitleHeading(doc *goquery.Document, _ Options) {
	doc.Find("h1").Remove()
}

// stripComments keeps its slot in the order but removes nothing yet.
func stripComments(_ *goquery.Document, _ Options) {}

// stripEditLinks removes section edit affordances. They expose editing URLs
// of the origin and must never reach a reader.
func stripEditLinks(doc *goquery.Document, _ Options) {
	doc.Find("span.mw-editsection, span.editsection").Remove()
}

// rewriteLinks turns new-page links into plain paths and removes legacy
// prefixes from link and media targets.
//
//	/mediawiki/index.php?title=Nisei&action=edit&redlink=1 -> /Nisei
func rewriteLinks(doc *goquery.Document, opts Options) {
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.Contains(href, "action=edit") {
			href = strings.Replace(href, "?title=", "/", 1)
			href = strings.ReplaceAll(href, "&action=edit", "")
			href = strings.ReplaceAll(href, "&redlink=1", "")
		}
		a.SetAttr("href", stripLegacyPrefix(href, opts.LegacyPrefixes))
	})
	doc.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		s.SetAttr("src", stripLegacyPrefix(src, opts.LegacyPrefixes))
	})
}

// stripLegacyPrefix removes the first configured prefix found at a path
// boundary. At most one prefix is removed.
func stripLegacyPrefix(target string, prefixes []string) string {
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		for from := 0; from < len(target); {
			i := strings.Index(target[from:], prefix)
			if i < 0 {
				break
			}
			i += from
			end := i + len(prefix)
			if !atBoundary(target, end) {
				from = i + 1
				continue
			}
			stripped := target[:i] + target[end:]
			if stripped == "" {
				return "/"
			}
			return stripped
		}
	}
	return target
}

func atBoundary(target string, end int) bool {
	if end == len(target) {
		return true
	}
	switch target[end] {
	case '/', '?', '#':
		return true
	}
	return false
}

// rewritePagination turns category paging links into query-only form.
//
//	?title=Category:Camps&pagefrom=Manzanar -> /Category:Camps?pagefrom=Manzanar
func rewritePagination(doc *goquery.Document, _ Options) {
	for _, param := range []string{"pagefrom", "pageuntil"} {
		doc.Find(`a[href*="` + param + `="]`).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.Replace(href, "?title=", "/", 1)
			href = strings.Replace(href, "&"+param+"=", "?"+param+"=", 1)
			a.SetAttr("href", href)
		})
	}
}

// stripStatusMarkers removes editorial banners such as
// <div class="alert published">.
func stripStatusMarkers(doc *goquery.Document, opts Options) {
	if len(opts.StatusMarkers) == 0 {
		return
	}
	doc.Find("div.alert").FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, marker := range opts.StatusMarkers {
			if s.HasClass(marker) {
				return true
			}
		}
		return false
	}).Remove()
}

// addTopLinks puts a top link before every h2 after the second and one at
// the end of the body. Existing top links are replaced.
func addTopLinks(doc *goquery.Document, opts Options) {
	body := doc.Find("body")
	if opts.Printed || isBlank(body) {
		return
	}
	doc.Find("div.toplink").Remove()
	doc.Find("h2").Each(func(i int, h *goquery.Selection) {
		if i > 1 {
			h.BeforeHtml(topLinkHTML)
		}
	})
	body.AppendHtml(topLinkHTML)
}

func isBlank(s *goquery.Selection) bool {
	return s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == ""
}

// stripPrimarySources removes inline media whose identifier was resolved to a
// source. The thumbnail frame or gallery box goes with the image.
func stripPrimarySources(doc *goquery.Document, opts Options) {
	if len(opts.SourceIDs) == 0 {
		return
	}
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		id := sources.ExtractID(src)
		if _, ok := opts.SourceIDs[id]; id == "" || !ok {
			return
		}
		sourceFrame(img).Remove()
	})
}

// frameSelectors lists the wrappers of an inline image, outermost first.
// A gallery box holds a thumb frame of its own, so it has to win.
var frameSelectors = []string{"li.gallerybox", "div.thumb", "a.image"}

// sourceFrame returns the element to remove along with img.
func sourceFrame(img *goquery.Selection) *goquery.Selection {
	for _, sel := range frameSelectors {
		if frame := img.Closest(sel); frame.Length() > 0 {
			return frame
		}
	}
	return img
}
