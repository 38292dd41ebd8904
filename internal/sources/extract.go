package sources

import "strings"

// thumbMarker identifies MediaWiki thumbnail URIs, which nest the original
// filename one directory above the scaled file:
// /images/thumb/a/ab/ID.jpg/200px-ID.jpg
const thumbMarker = "thumb"

// ExtractID returns the catalog identifier embedded in a media URI.
// It returns an empty string when the URI has no filename component.
// The identifier is not checked against the catalog.
func ExtractID(uri string) string {
	p := uri
	if strings.Contains(uri, thumbMarker) {
		p = dirname(uri)
	}
	return stem(basename(p))
}

// IdentifiersOf extracts identifiers from uris in order.
// Misses are dropped; duplicates are kept.
func IdentifiersOf(uris []string) []string {
	ids := make([]string, 0, len(uris))
	for _, uri := range uris {
		if id := ExtractID(uri); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func basename(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func dirname(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// stem drops the extension. Leading dots do not start an extension.
func stem(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name
	}
	return name[:i]
}
