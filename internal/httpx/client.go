// Package httpx provides the shared HTTP client used by the source adapters,
// with per-host rate limiting and retry on transient failures.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"creatorwatch/internal/retry"
)

const defaultTimeout = 30 * time.Second

// Config holds client configuration.
type Config struct {
	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// RPS is the per-host request rate. 0 means unlimited.
	RPS float64

	// Burst is the token bucket burst size per host.
	Burst int

	// UserAgent for outgoing requests.
	UserAgent string

	// BreakerThreshold is the consecutive transient failure count that
	// opens a host's circuit. 0 selects the default.
	BreakerThreshold int

	// BreakerRecovery is how long an open circuit waits before probing.
	// 0 selects the default.
	BreakerRecovery time.Duration

	// Retry configuration for transient failures.
	Retry retry.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   defaultTimeout,
		RPS:       4,
		Burst:     4,
		UserAgent: "creatorwatch/1.0",
		Retry:     retry.DefaultConfig(),
	}
}

// Client is an HTTP client with per-host token-bucket rate limiting and a
// per-host circuit breaker.
type Client struct {
	base     *http.Client
	cfg      Config
	breaker  *Breaker
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a client with the given configuration.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		base:     &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		breaker:  NewBreaker(cfg.BreakerThreshold, cfg.BreakerRecovery),
		limiters: make(map[string]*rate.Limiter),
	}
}

// NewWithHTTPClient creates a client around an existing *http.Client.
// Used by tests to inject httptest servers.
func NewWithHTTPClient(cfg Config, base *http.Client) *Client {
	c := New(cfg)
	c.base = base
	return c
}

// HTTPClient returns the underlying *http.Client, for libraries that build
// their own transport on top of it.
func (c *Client) HTTPClient() *http.Client { return c.base }

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lim, ok := c.limiters[host]; ok {
		return lim
	}
	limit := rate.Inf
	if c.cfg.RPS > 0 {
		limit = rate.Limit(c.cfg.RPS)
	}
	burst := c.cfg.Burst
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(limit, burst)
	c.limiters[host] = lim
	return lim
}

// Get fetches rawURL and returns the response body. Transient failures
// (network errors, 429, 5xx) are retried with backoff; other non-2xx
// statuses are returned as *StatusError without retrying.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	var body []byte
	err = retry.Do(ctx, c.cfg.Retry, transientClassifier, func(ctx context.Context) error {
		if err := c.breaker.Allow(u.Host); err != nil {
			return err
		}
		if err := c.limiter(u.Host).Wait(ctx); err != nil {
			return err
		}

		err := c.fetch(ctx, rawURL, &body)
		if err == nil {
			c.breaker.RecordSuccess(u.Host)
			return nil
		}
		// Only transient failures count against the host; a 404 says the
		// resource is gone, not that the host is down.
		if transientClassifier(err) {
			c.breaker.RecordFailure(u.Host)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, body *[]byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	*body, err = io.ReadAll(resp.Body)
	return err
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpx: GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// transientClassifier retries network errors and temporary HTTP statuses.
// An open circuit fails fast instead of burning retries against it.
func transientClassifier(err error) bool {
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return retry.IsRetryable(err)
}
