// Package html extracts readable text from rewritten page HTML so search
// backends can index words rather than markup.
package html

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	referenceMarker   = regexp.MustCompile(`(?is)<sup[^>]*class="[^"]*\breference\b[^"]*"[^>]*>.*?</sup>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|dd|dt|tr|td|th|blockquote|pre|table|figcaption|section)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|dd|dt|tr|blockquote|pre|table|figcaption|section)(\s[^>]*)?>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// Text returns the visible text of an HTML fragment, one block per line.
// Scripts, styles and citation markers such as [1] are dropped.
func Text(body string) string {
	body = scriptTag.ReplaceAllString(body, "")
	body = styleTag.ReplaceAllString(body, "")
	body = noscriptTag.ReplaceAllString(body, "")
	body = svgTag.ReplaceAllString(body, "")
	body = referenceMarker.ReplaceAllString(body, "")
	body = htmlComments.ReplaceAllString(body, "")

	body = openBlockElements.ReplaceAllString(body, "\n")
	body = blockElements.ReplaceAllString(body, "\n")
	body = brTags.ReplaceAllString(body, "\n")
	body = hrTags.ReplaceAllString(body, "\n")

	body = allTags.ReplaceAllString(body, "")
	body = html.UnescapeString(body)
	body = multiSpaces.ReplaceAllString(body, " ")

	lines := strings.Split(body, "\n")
	result := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
