// Package rewrite turns rendered wiki HTML into publish-ready HTML.
//
// A Pipeline is an explicit, ordered list of stages applied to one parsed
// document. Stages are independent and idempotent, and each is a no-op when
// the structure it targets is absent. Order still matters: the primary-source
// stage needs the resolved identifiers, and the pagination stage expects
// legacy prefixes to be gone already.
//
// The default order is:
//
//  1. strip-title-heading: remove h1 headings, the page title is shown separately
//  2. strip-comments: placeholder, does nothing yet
//  3. strip-edit-links: remove "edit section" affordances
//  4. rewrite-links: drop legacy path prefixes and fix new-page links
//  5. rewrite-pagination: turn ?title=X&pagefrom=Y into /X?pagefrom=Y
//  6. strip-status-markers: remove editorial status banners
//  7. top-links: add "back to top" links unless printing
//  8. strip-primary-sources: remove inline media that is shown as a source
package rewrite
