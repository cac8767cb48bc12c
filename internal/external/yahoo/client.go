// Package yahoo fetches price history, quotes and annual statements from
// Yahoo Finance.
package yahoo

import (
	"context"
	"net/http"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"github.com/wonny/nse-screener/pkg/httputil"
	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/retry"
	"github.com/wonny/nse-screener/pkg/throttle"
)

// chartFunc loads daily bars; equityFunc loads the equity quote.
// Both are replaced in tests.
type (
	chartFunc  func(symbol string, start, end time.Time) ([]finance.ChartBar, error)
	equityFunc func(symbol string) (*finance.Equity, error)
)

// Client handles communication with Yahoo Finance.
// Chart and quote calls go through finance-go; statement series go
// through the shared HTTP client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    throttle.Limiter
	retry      retry.Config
	now        func() time.Time

	chart  chartFunc
	equity equityFunc
}

// NewClient creates a new Yahoo Finance client. finance-go keeps a
// package-level HTTP client, so its timeout is set here.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	finance.SetHTTPClient(&http.Client{Timeout: httpClient.Timeout()})

	return &Client{
		httpClient: httpClient,
		logger:     log.Component("yahoo"),
		baseURL:    baseURL,
		limiter:    throttle.NoLimit{},
		retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     8 * time.Second,
			Jitter:       time.Second,
		},
		now:    time.Now,
		chart:  fetchChart,
		equity: equity.Get,
	}
}

// WithLimiter paces chart and quote calls
func (c *Client) WithLimiter(l throttle.Limiter) *Client {
	if l == nil {
		l = throttle.NoLimit{}
	}
	c.limiter = l
	return c
}

// WithRetry overrides the retry policy for chart and quote calls
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}

// paced runs fn with retry, waiting on the limiter before every attempt
func (c *Client) paced(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		return fn()
	})
}

func fetchChart(symbol string, start, end time.Time) ([]finance.ChartBar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []finance.ChartBar
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
