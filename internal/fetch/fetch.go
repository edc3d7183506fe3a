// Package fetch performs bounded HTTP GETs: every call carries a hard
// wall-clock deadline that cancels the in-flight request on expiry, and
// failures surface as a small typed taxonomy so callers can route on them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultTimeout bounds a single fetch. Kept short so a stalled site does not
// hold up the extraction race on mobile connections.
const DefaultTimeout = 9000 * time.Millisecond

// ErrTimeout is returned when a fetch exceeds its wall-clock budget. The
// underlying request is cancelled before the error is returned.
var ErrTimeout = errors.New("fetch timeout")

// HTTPError reports a completed request with a non-2xx status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d", e.Status)
}

// NetworkError reports a transport-level failure (DNS, refused, TLS, offline).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client issues GETs with caching disabled and a per-call timeout.
// The zero value is usable; Timeout defaults to DefaultTimeout and
// MaxAttempts to a single attempt.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each call including any retries of that call.
	Timeout time.Duration
	// MaxAttempts includes the initial attempt. Values above 1 retry
	// transient failures (5xx, transport errors) with a constant backoff;
	// timeouts and 4xx are permanent.
	MaxAttempts int
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Get fetches url and returns the raw body. The body is read as text
// regardless of the declared content type; callers decide what to do with
// non-HTML payloads.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !isHTTPScheme(u) {
		return nil, fmt.Errorf("unsupported URL: %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	var body []byte
	op := func() error {
		b, err := c.tryOnce(ctx, rawURL)
		if err != nil {
			if !isTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(250*time.Millisecond), uint64(attempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		// The policy reports its own context expiry as DeadlineExceeded;
		// map it to the timeout taxonomy like any other deadline hit.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout())
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	// Always hit the network, never an intermediary cache.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout())
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout())
		}
		return nil, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	return b, nil
}

func isTransient(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 500 && httpErr.Status <= 599
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
