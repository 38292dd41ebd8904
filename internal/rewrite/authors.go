package rewrite

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

var nameSeparator = regexp.MustCompile(`\s+and\s+`)

// ExtractAuthors reads the byline of an article.
//
// Display names come from the links in div#authorByline. Citation names come
// from div#citationAuthor, which holds "Surname,Given" entries separated by
// ";" or "and".
func ExtractAuthors(doc *goquery.Document) domain.AuthorInfo {
	var info domain.AuthorInfo

	doc.Find("div#authorByline a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			info.Display = append(info.Display, name)
		}
	})

	doc.Find("div#citationAuthor").Each(func(_ int, s *goquery.Selection) {
		for _, entry := range strings.Split(s.Text(), ";") {
			for _, name := range nameSeparator.Split(entry, -1) {
				if parsed := parseName(name); parsed != nil {
					info.Parsed = append(info.Parsed, parsed)
				}
			}
		}
	})

	return info
}

func parseName(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	parts := strings.Split(name, ",")
	if len(parts) != 2 {
		logger.Warn("Cannot split author name %q into surname and given name", name)
		return []string{name}
	}
	return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
}
