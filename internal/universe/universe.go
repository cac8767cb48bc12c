// Package universe resolves an index name into exchange tickers.
package universe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/nse-screener/internal/external/nse"
	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/redis"
)

// ErrUnknownIndex is a configuration error: the index has no constituent source
var ErrUnknownIndex = errors.New("unknown index")

// TickerSuffix marks NSE listings in Yahoo tickers
const TickerSuffix = ".NS"

// indexFiles maps supported indices to their archive file
var indexFiles = map[string]string{
	"NIFTY50":  "ind_nifty50list.csv",
	"NIFTY200": "ind_nifty200list.csv",
	"NIFTY500": "ind_nifty500list.csv",
}

// CSVSource downloads an index constituent file
type CSVSource interface {
	IndexCSV(ctx context.Context, file string) ([]byte, error)
}

// Provider lists index constituents as Yahoo tickers
type Provider struct {
	source CSVSource
	cache  *redis.Cache
	logger *logger.Logger
}

// NewProvider creates a universe provider. cache may wrap a disabled client.
func NewProvider(source CSVSource, cache *redis.Cache, log *logger.Logger) *Provider {
	return &Provider{
		source: source,
		cache:  cache,
		logger: log.Component("universe"),
	}
}

// Lookup returns the archive file of an index
func Lookup(index string) (string, error) {
	file, ok := indexFiles[strings.ToUpper(strings.TrimSpace(index))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIndex, index)
	}
	return file, nil
}

// Constituents returns up to limit tickers (0 = all) in file order.
// An unknown index fails before any request is made.
func (p *Provider) Constituents(ctx context.Context, index string, limit int) ([]string, error) {
	file, err := Lookup(index)
	if err != nil {
		return nil, err
	}

	key := "universe:" + file
	var symbols []string
	found, err := p.cache.Get(ctx, key, &symbols)
	if err != nil {
		p.logger.WithError(err).Warn("Universe cache read failed")
	}

	if !found {
		body, err := p.source.IndexCSV(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("fetch %s constituents: %w", index, err)
		}
		symbols, err = nse.ParseConstituents(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s constituents: %w", index, err)
		}
		if err := p.cache.Set(ctx, key, symbols, redis.TTLUniverse); err != nil {
			p.logger.WithError(err).Warn("Universe cache write failed")
		}
	}

	tickers := make([]string, 0, len(symbols))
	for _, s := range symbols {
		tickers = append(tickers, ToTicker(s))
	}
	if limit > 0 && len(tickers) > limit {
		tickers = tickers[:limit]
	}

	p.logger.WithFields(map[string]interface{}{
		"index":   index,
		"total":   len(symbols),
		"tickers": len(tickers),
		"cached":  found,
	}).Info("Universe resolved")

	return tickers, nil
}

// ToTicker maps an NSE symbol to its Yahoo ticker
func ToTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + TickerSuffix
}

// BareSymbol strips the exchange suffix from a ticker
func BareSymbol(ticker string) string {
	return strings.TrimSuffix(ticker, TickerSuffix)
}
