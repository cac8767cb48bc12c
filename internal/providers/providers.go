// Package providers adapts the external clients to the pipeline's provider
// interfaces. Every lookup returns a contracts.Fetch; errors never escape.
package providers

import (
	"context"
	"time"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/fundamentals"
	"github.com/wonny/nse-screener/internal/universe"
	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/redis"
)

// HistorySource loads daily bars
type HistorySource interface {
	History(ctx context.Context, symbol string, lookbackDays int) (contracts.PriceSeries, error)
}

// StatementSource loads annual statements and the live quote
type StatementSource interface {
	Statements(ctx context.Context, symbol string) (fundamentals.Statements, error)
	Quote(ctx context.Context, symbol string) (fundamentals.Quote, error)
}

// ShareholdingSource loads promoter holding for a bare exchange symbol
type ShareholdingSource interface {
	Shareholding(ctx context.Context, symbol string) (contracts.PromoterSnapshot, error)
}

// Prices implements contracts.PriceProvider
type Prices struct {
	source HistorySource
	logger *logger.Logger
}

// NewPrices creates a price provider
func NewPrices(source HistorySource, log *logger.Logger) *Prices {
	return &Prices{source: source, logger: log.Component("prices")}
}

// History implements contracts.PriceProvider
func (p *Prices) History(ctx context.Context, symbol string, lookbackDays int) contracts.Fetch[contracts.PriceSeries] {
	series, err := p.source.History(ctx, symbol, lookbackDays)
	if err != nil {
		return unavailable[contracts.PriceSeries](p.logger, symbol, "prices", err)
	}
	if series.Empty() {
		return contracts.Failed[contracts.PriceSeries]("empty price history")
	}
	return contracts.Ok(series)
}

// Fundamentals implements contracts.FundamentalProvider with an optional
// Redis snapshot cache.
type Fundamentals struct {
	source StatementSource
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewFundamentals creates a fundamentals provider
func NewFundamentals(source StatementSource, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Fundamentals {
	return &Fundamentals{source: source, cache: cache, ttl: ttl, logger: log.Component("fundamentals")}
}

// Fundamentals implements contracts.FundamentalProvider. With the quote
// fallback on, a missing statement ratio (or a failed statement call) is
// filled from the quote.
func (f *Fundamentals) Fundamentals(ctx context.Context, symbol string, useInfoFallback bool) contracts.Fetch[contracts.FundamentalSnapshot] {
	key := redis.FundamentalsKey(symbol, useInfoFallback)

	var cached contracts.FundamentalSnapshot
	if found, err := f.cache.Get(ctx, key, &cached); err != nil {
		f.logger.WithError(err).Debug("Fundamentals cache read failed")
	} else if found {
		return contracts.Ok(cached)
	}

	st, stErr := f.source.Statements(ctx, symbol)
	if stErr != nil && !useInfoFallback {
		return unavailable[contracts.FundamentalSnapshot](f.logger, symbol, "fundamentals", stErr)
	}

	var quote *fundamentals.Quote
	if useInfoFallback && (stErr != nil || fundamentals.NeedsQuote(st)) {
		q, err := f.source.Quote(ctx, symbol)
		switch {
		case err == nil:
			quote = &q
		case stErr != nil:
			return unavailable[contracts.FundamentalSnapshot](f.logger, symbol, "fundamentals", stErr)
		default:
			f.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"error":  err.Error(),
			}).Debug("Quote fallback failed")
		}
	}

	snap := fundamentals.Assemble(st, quote)

	if err := f.cache.Set(ctx, key, snap, f.ttl); err != nil {
		f.logger.WithError(err).Debug("Fundamentals cache write failed")
	}

	return contracts.Ok(snap)
}

// Promoter implements contracts.PromoterProvider with an optional cache
type Promoter struct {
	source ShareholdingSource
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewPromoter creates a promoter provider
func NewPromoter(source ShareholdingSource, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Promoter {
	return &Promoter{source: source, cache: cache, ttl: ttl, logger: log.Component("promoter")}
}

// Promoter implements contracts.PromoterProvider. symbol may carry the
// exchange suffix; it is stripped before the lookup.
func (p *Promoter) Promoter(ctx context.Context, symbol string) contracts.Fetch[contracts.PromoterSnapshot] {
	bare := universe.BareSymbol(symbol)
	key := redis.PromoterKey(bare)

	var cached contracts.PromoterSnapshot
	if found, err := p.cache.Get(ctx, key, &cached); err != nil {
		p.logger.WithError(err).Debug("Promoter cache read failed")
	} else if found {
		return contracts.Ok(cached)
	}

	snap, err := p.source.Shareholding(ctx, bare)
	if err != nil {
		return unavailable[contracts.PromoterSnapshot](p.logger, symbol, "promoter", err)
	}

	if err := p.cache.Set(ctx, key, snap, p.ttl); err != nil {
		p.logger.WithError(err).Debug("Promoter cache write failed")
	}

	return contracts.Ok(snap)
}

func unavailable[T any](log *logger.Logger, symbol, category string, err error) contracts.Fetch[T] {
	log.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"category": category,
		"error":    err.Error(),
	}).Warn("Fetch failed, fields left unknown")
	return contracts.FailedErr[T](err)
}
