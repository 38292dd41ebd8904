// Package domain defines the core business entities for wikiprox.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawPage: A page as fetched from the origin wiki
//   - SourceRecord: Catalog metadata for one primary source
//   - PublishableDocument: A rewritten page ready to be served or indexed
//   - InventoryEntry: A title/timestamp pair from the origin or the index
//   - SyncPlan: The titles a sync run must upsert or delete
//   - SyncReport: The outcome of a sync run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
