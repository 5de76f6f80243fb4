package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/eunbi/vaxsight/pkg/logger"
)

// Client is an HTTP client wrapper with retry logic, rate limiting, and
// logging. All outbound requests go through this client.
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// New creates a new HTTP client.
func New(log *logger.Logger, timeout time.Duration, rps float64) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// WithRetry configures retry behavior.
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry.
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.do(req)
}

// do executes the request with rate limiting and retry.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	maxAttempts := 1
	if c.retryConfig.Enabled {
		maxAttempts = c.retryConfig.MaxRetries + 1
	}

	delay := c.retryConfig.InitialDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		start := time.Now()
		resp, err = c.httpClient.Do(req)
		elapsed := time.Since(start)

		if err == nil && resp.StatusCode < 500 {
			c.logger.WithFields(map[string]interface{}{
				"method":  req.Method,
				"url":     req.URL.String(),
				"status":  resp.StatusCode,
				"elapsed": elapsed.String(),
				"attempt": attempt,
			}).Debug("http request completed")
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
			err = fmt.Errorf("server returned status %d", resp.StatusCode)
		}

		if attempt == maxAttempts {
			break
		}

		c.logger.WithError(err).Warnf("http request failed (attempt %d/%d), retrying in %s",
			attempt, maxAttempts, delay)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	return nil, fmt.Errorf("%s %s failed after %d attempts: %w",
		req.Method, req.URL.String(), maxAttempts, err)
}
