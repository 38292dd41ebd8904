// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - OriginWiki: Page fetch and inventory listing from the origin wiki
//   - SourceCatalog: Batched primary-source lookup
//   - SearchIndex: Secondary index read, upsert and delete
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Sync run history. Without it, reports are not kept.
//   - SchedulerStore: Scheduler state. Only needed by the schedule command.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
