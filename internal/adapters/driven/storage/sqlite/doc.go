// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SearchIndex: Local index of rewritten pages and their primary sources
//   - RunStore: Sync run reports
//   - SchedulerStore: Index sync schedule, linked to its last run report
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.wikiprox/data/wikiprox.db
//
// # Thread Safety
//
// All operations are thread-safe. Write transactions take the database lock
// up front, so concurrent sync workers queue on the busy timeout instead of
// failing.
package sqlite
