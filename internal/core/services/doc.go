// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// PageService renders single pages, Reconcile and OriginInventory compute
// what the index is missing, SyncOrchestrator executes that plan and
// Scheduler runs it periodically.
package services
