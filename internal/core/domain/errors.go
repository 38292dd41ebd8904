package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnpublished indicates the origin page is not flagged as published
	// and the deployment does not show unpublished content.
	ErrUnpublished = errors.New("page not published")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Collaborator Errors.

	// ErrTimeout indicates a call to the origin, catalog or index exceeded
	// its timeout budget.
	ErrTimeout = errors.New("request timed out")

	// ErrConnection indicates a collaborator could not be reached at all.
	ErrConnection = errors.New("connection failed")

	// ErrUnavailable indicates a collaborator answered with a non-success status.
	ErrUnavailable = errors.New("service unavailable")
)

// IsConnectivity reports whether err is a timeout or a connection failure.
// A run of these across many titles means a dependency is down.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnection)
}
