package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// APIError is a non-success HTTP response from an upstream API.
type APIError struct {
	Service    string
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API error %d (URL: %s)", e.Service, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: API error %d: %s (URL: %s)", e.Service, e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status code onto the domain error taxonomy.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return domain.ErrUnavailable
	}
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// transportError classifies a failed round trip.
// Cancellation is returned as is so callers can tell it apart from an outage.
func transportError(service, operation string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %s: %w", service, operation, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %s: %w: %w", service, operation, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %s: %w: %w", service, operation, domain.ErrConnection, err)
}
