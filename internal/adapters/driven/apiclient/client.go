// Package apiclient provides the throttled JSON-over-HTTP client shared by
// the origin wiki and source catalog adapters.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second
	DefaultBurst   = 5

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// Config holds configuration for an API client.
type Config struct {
	// Service names the upstream in errors and logs.
	Service string

	// Timeout bounds each request (default: 10s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 5).
	Burst int

	// Username and Password enable HTTP basic auth when set.
	Username string
	Password string

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client issues GET requests and decodes JSON responses.
type Client struct {
	http     *http.Client
	limiter  *RateLimiter
	service  string
	username string
	password string
}

// New creates a new API client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		http:     httpClient,
		limiter:  NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		service:  cfg.Service,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// GetJSON fetches rawURL and decodes the JSON body into out.
//
// Errors wrap the domain taxonomy: ErrTimeout and ErrConnection when the
// request could not complete, ErrNotFound for 404, ErrRateLimited for 429
// and ErrUnavailable for any other non-success status or a malformed body.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transportError(c.service, "rate limit wait", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w: %w", c.service, domain.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	logger.Debug("%s: GET %s", c.service, rawURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(c.service, "send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr net.Error
		if ctx.Err() != nil || errors.As(err, &netErr) {
			return transportError(c.service, "read response", err)
		}
		return fmt.Errorf("%s: decode response: %w: %w", c.service, domain.ErrUnavailable, err)
	}
	return nil
}

// Service returns the upstream name.
func (c *Client) Service() string {
	return c.service
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
