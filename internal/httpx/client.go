package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// StatusError reports a non-2xx HTTP status that is not worth retrying.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// ErrRateLimited tags a 429 response. Requests that still fail after the
// retry budget is spent wrap this error so callers can tell rate limiting
// apart from transport trouble when tuning the request interval.
var ErrRateLimited = errors.New("rate limited (429)")

// Options configures the HTTP client.
type Options struct {
	// Timeout for individual requests.
	// Default: 30s
	Timeout time.Duration

	// Attempts is the total number of tries per request.
	// Default: 3
	Attempts int

	// Cooldown is the delay before the first retry; each further retry
	// multiplies it by Exponent.
	// Default: 1s
	Cooldown time.Duration

	// Exponent is the backoff growth factor.
	// Default: 2.0
	Exponent float64

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		Attempts:  3,
		Cooldown:  time.Second,
		Exponent:  2.0,
		UserAgent: "chartdl",
	}
}

// Client fetches single resources with retry and backoff.
//
// Outcomes are classified per attempt:
//   - transport errors and HTTP 429 are retried with exponential backoff
//   - any other non-2xx status fails immediately with a *StatusError
//   - 2xx returns the response body
type Client struct {
	httpClient *http.Client
	opts       Options

	// sleep is swapped out by tests to observe backoff durations.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new client with the given options. Zero-value fields
// fall back to DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = def.Cooldown
	}
	if opts.Exponent <= 0 {
		opts.Exponent = def.Exponent
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		sleep:      sleepCtx,
	}
}

// Fetch performs a GET and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.opts.Attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = ErrRateLimited
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.opts.Attempts, lastErr)
}

// backoff returns the delay before the given attempt (1-based for retries).
func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(float64(c.opts.Cooldown) * math.Pow(c.opts.Exponent, float64(attempt-1)))
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// IsPermanent reports whether err is a non-retryable HTTP status failure.
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
