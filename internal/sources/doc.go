// Package sources resolves the primary sources embedded in a page.
//
// Media files uploaded to the wiki are named after their catalog identifier
// (e.g. en-denshopd-i37-00239-1.jpg). ExtractID recovers the identifier from
// an image URI, and Resolver turns the images of a page into the ordered,
// de-duplicated list of catalog records they refer to.
package sources
