// Package nse talks to the National Stock Exchange of India: index
// constituent archives and the quote API's shareholding section.
package nse

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/nse-screener/pkg/config"
	"github.com/wonny/nse-screener/pkg/httputil"
	"github.com/wonny/nse-screener/pkg/logger"
)

// Client handles communication with NSE.
// The API client must keep cookies: the quote API rejects requests that
// did not first visit the homepage.
type Client struct {
	archive    *httputil.Client
	api        *httputil.Client
	logger     *logger.Logger
	baseURL    string
	archiveURL string

	mu     sync.Mutex
	primed bool
}

// NewClient creates a new NSE client
func NewClient(archive, api *httputil.Client, log *logger.Logger, cfg config.NSEConfig) *Client {
	referer := cfg.BaseURL + "/"
	archive.WithHeader("Accept", "text/csv,text/plain,*/*").WithHeader("Referer", referer)
	api.WithHeader("Accept", "*/*").WithHeader("Referer", referer).WithCookieJar()

	return &Client{
		archive:    archive,
		api:        api,
		logger:     log.Component("nse"),
		baseURL:    cfg.BaseURL,
		archiveURL: cfg.ArchiveURL,
	}
}

// IndexCSV downloads an index constituent file, e.g. "ind_nifty50list.csv"
func (c *Client) IndexCSV(ctx context.Context, file string) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/content/indices/%s", c.archiveURL, file)

	body, err := c.archive.GetBytes(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("index csv %s: %w", file, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"file":  file,
		"bytes": len(body),
	}).Debug("Fetched index constituents")

	return body, nil
}

// prime visits the homepage once so the session carries NSE cookies.
// A failed visit is logged and retried on the next call.
func (c *Client) prime(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.primed {
		return
	}

	if _, err := c.api.GetBytes(ctx, c.baseURL+"/"); err != nil {
		c.logger.WithError(err).Warn("NSE session priming failed")
		return
	}
	c.primed = true
}

// resetSession forces the next call to prime again
func (c *Client) resetSession() {
	c.mu.Lock()
	c.primed = false
	c.mu.Unlock()
}
