package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/retry"
	"github.com/wonny/nse-screener/pkg/throttle"
)

// Client is an HTTP client wrapper with pacing, retry and logging.
// All requests to external data sources go through it.
type Client struct {
	httpClient   *http.Client
	logger       *logger.Logger
	retryConfig  retry.Config
	retryEnabled bool
	limiter      throttle.Limiter
	headers      http.Header
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// New creates a client with the given per-request timeout and User-Agent
func New(log *logger.Logger, timeout time.Duration, userAgent string) *Client {
	headers := http.Header{}
	if userAgent != "" {
		headers.Set("User-Agent", userAgent)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:       log,
		retryConfig:  retry.Default(),
		retryEnabled: true,
		limiter:      throttle.NoLimit{},
		headers:      headers,
	}
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retryConfig = cfg
	c.retryEnabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryEnabled = false
	return c
}

// WithLimiter paces every attempt, retries included
func (c *Client) WithLimiter(l throttle.Limiter) *Client {
	if l == nil {
		l = throttle.NoLimit{}
	}
	c.limiter = l
	return c
}

// WithHeader adds a header sent with every request
func (c *Client) WithHeader(key, value string) *Client {
	c.headers.Set(key, value)
	return c
}

// WithCookieJar keeps cookies between requests, for sources that hand out
// a session cookie on their landing page.
func (c *Client) WithCookieJar() *Client {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
	return c
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// GetBytes performs a GET request and returns the response body.
// Non-2xx responses become a *StatusError.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	attempt := func(ctx context.Context) error {
		b, err := c.once(ctx, url)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !IsRetryableError(se.StatusCode) {
				return retry.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	startTime := time.Now()

	var err error
	if c.retryEnabled {
		err = retry.Do(ctx, c.retryConfig, attempt)
	} else {
		err = attempt(ctx)
		if retry.IsPermanent(err) {
			err = errors.Unwrap(err)
		}
	}

	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":      url,
		"bytes":    len(body),
		"duration": duration,
	}).Debug("HTTP request completed")

	return body, nil
}

// GetJSON performs a GET request and decodes the JSON body into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}

	return nil
}

// once executes a single paced attempt
func (c *Client) once(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create GET request: %w", err))
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		}).Debug("HTTP attempt failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.WithFields(map[string]interface{}{
			"url":         url,
			"status_code": resp.StatusCode,
		}).Debug("HTTP attempt rejected")
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// IsRetryableError checks if a status code should be retried
func IsRetryableError(statusCode int) bool {
	// 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
