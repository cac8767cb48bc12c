package contracts

import "context"

// PriceProvider fetches daily price history
type PriceProvider interface {
	History(ctx context.Context, symbol string, lookbackDays int) Fetch[PriceSeries]
}

// FundamentalProvider fetches a fundamentals snapshot. useInfoFallback lets
// the provider fill market cap / PE / PB from the quote when the statement
// series lack them.
type FundamentalProvider interface {
	Fundamentals(ctx context.Context, symbol string, useInfoFallback bool) Fetch[FundamentalSnapshot]
}

// PromoterProvider fetches promoter holding changes for an exchange-listed symbol
type PromoterProvider interface {
	Promoter(ctx context.Context, symbol string) Fetch[PromoterSnapshot]
}

// UniverseProvider lists the tickers of a named index. An unknown index is
// a configuration error and is reported before any network call.
type UniverseProvider interface {
	Constituents(ctx context.Context, index string, limit int) ([]string, error)
}
