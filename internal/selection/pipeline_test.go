package selection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/screenconfig"
	"github.com/wonny/nse-screener/pkg/logger"
)

// === Fakes ===

type fakePrices struct {
	series map[string]contracts.PriceSeries
	calls  atomic.Int32
}

func (f *fakePrices) History(ctx context.Context, symbol string, lookbackDays int) contracts.Fetch[contracts.PriceSeries] {
	f.calls.Add(1)
	s, ok := f.series[symbol]
	if !ok {
		return contracts.Failed[contracts.PriceSeries]("no history")
	}
	return contracts.Ok(s)
}

type fakeFundamentals struct {
	mu      sync.Mutex
	snaps   map[string]contracts.FundamentalSnapshot
	symbols []string
}

func (f *fakeFundamentals) Fundamentals(ctx context.Context, symbol string, useInfoFallback bool) contracts.Fetch[contracts.FundamentalSnapshot] {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbol)
	f.mu.Unlock()

	s, ok := f.snaps[symbol]
	if !ok {
		return contracts.Failed[contracts.FundamentalSnapshot]("statements unavailable")
	}
	return contracts.Ok(s)
}

func (f *fakeFundamentals) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.symbols...)
}

type fakePromoter struct {
	snaps map[string]contracts.PromoterSnapshot
}

func (f *fakePromoter) Promoter(ctx context.Context, symbol string) contracts.Fetch[contracts.PromoterSnapshot] {
	s, ok := f.snaps[symbol]
	if !ok {
		return contracts.FailedErr[contracts.PromoterSnapshot](errors.New("no shareholding"))
	}
	return contracts.Ok(s)
}

type countingLimiter struct {
	waits atomic.Int32
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits.Add(1)
	return ctx.Err()
}

// trendSeries returns n daily bars moving by step per day from start
func trendSeries(n int, start, step float64) contracts.PriceSeries {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = contracts.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return contracts.NewPriceSeries(bars)
}

func testConfig() screenconfig.Config {
	cfg := screenconfig.Default()
	cfg.Run.Throttle = false
	cfg.Run.BatchSize = 2
	return cfg
}

func newTestPipeline(cfg screenconfig.Config, prices *fakePrices, funds *fakeFundamentals, prom *fakePromoter) *Pipeline {
	return NewPipeline(cfg, Providers{Prices: prices, Fundamentals: funds, Promoter: prom}, nil, logger.NewNop())
}

// === Tests ===

func TestPipeline_BuyExcludesPEAboveMaxSellRetains(t *testing.T) {
	pricey := strongFundamentals(4e11)
	pricey.PE = contracts.Some(40)

	funds := &fakeFundamentals{snaps: map[string]contracts.FundamentalSnapshot{
		"GOOD.NS":   strongFundamentals(2e11),
		"PRICEY.NS": pricey,
	}}
	prom := &fakePromoter{snaps: map[string]contracts.PromoterSnapshot{
		"GOOD.NS":   strongPromoter(),
		"PRICEY.NS": strongPromoter(),
	}}
	symbols := []string{"PRICEY.NS", "GOOD.NS"}

	buy, err := newTestPipeline(testConfig(), &fakePrices{}, funds, prom).Run(context.Background(), symbols, ModeBuy)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOD.NS"}, tickers(buy.Rows))
	assert.Equal(t, 1, buy.Stats.HardFilter.Filtered["pe_range"])

	sell, err := newTestPipeline(testConfig(), &fakePrices{}, funds, prom).Run(context.Background(), symbols, ModeSell)
	require.NoError(t, err)
	assert.Equal(t, []string{"PRICEY.NS", "GOOD.NS"}, tickers(sell.Rows))
	assert.Equal(t, ModeSell, sell.Mode)
	for _, row := range sell.Rows {
		assert.True(t, row.Enriched())
		assert.True(t, row.Score().Known())
	}
}

func TestPipeline_PriceFailureCarriedForward(t *testing.T) {
	prices := &fakePrices{}
	funds := &fakeFundamentals{snaps: map[string]contracts.FundamentalSnapshot{"A.NS": strongFundamentals(1e11)}}
	prom := &fakePromoter{}

	res, err := newTestPipeline(testConfig(), prices, funds, prom).Run(context.Background(), []string{"A.NS", "B.NS"}, ModeBuy)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.PriceFailures)
	assert.Equal(t, 2, res.Stats.Prefilter.Passed)
	assert.Equal(t, 1, res.Stats.FundamentalFailures)
	assert.Equal(t, 2, res.Stats.PromoterFailures)
	require.Len(t, res.Rows, 2)

	// A carries its fundamentals score and ranks first
	assert.Equal(t, "A.NS", res.Rows[0].Ticker)
	assert.False(t, res.Rows[0].Technical.Close.Known())
	assert.True(t, res.Rows[0].Fundamentals().PE.Known())
	assert.False(t, res.Rows[1].Fundamentals().MarketCap.Known())
}

func TestPipeline_FundamentalsCap(t *testing.T) {
	cfg := testConfig()
	limit := 2
	cfg.Run.FundamentalsCap = &limit

	funds := &fakeFundamentals{}
	symbols := []string{"A.NS", "B.NS", "C.NS", "D.NS", "E.NS"}

	res, err := newTestPipeline(cfg, &fakePrices{}, funds, &fakePromoter{}).Run(context.Background(), symbols, ModeSell)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Capped)
	assert.Equal(t, []string{"A.NS", "B.NS"}, tickers(res.Rows))
	assert.ElementsMatch(t, []string{"A.NS", "B.NS"}, funds.seen())
}

func TestPipeline_NoCap(t *testing.T) {
	cfg := testConfig()
	cfg.Run.FundamentalsCap = nil

	symbols := []string{"A.NS", "B.NS", "C.NS"}
	res, err := newTestPipeline(cfg, &fakePrices{}, &fakeFundamentals{}, &fakePromoter{}).Run(context.Background(), symbols, ModeSell)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Capped)
}

func TestPipeline_EmptyPrefilterGivesEmptyOutput(t *testing.T) {
	falling := trendSeries(260, 500, -1)
	prices := &fakePrices{series: map[string]contracts.PriceSeries{"A.NS": falling, "B.NS": falling}}
	funds := &fakeFundamentals{}

	res, err := newTestPipeline(testConfig(), prices, funds, &fakePromoter{}).Run(context.Background(), []string{"A.NS", "B.NS"}, ModeBuy)
	require.NoError(t, err)

	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.Stats.Prefilter.Passed)
	assert.Empty(t, funds.seen(), "no enrichment for an empty prefilter")
}

func TestPipeline_BatchModeKeepsOrder(t *testing.T) {
	prices := &fakePrices{series: map[string]contracts.PriceSeries{}}
	symbols := make([]string, 0, 7)
	for i, s := range []string{"G", "F", "E", "D", "C", "B", "A"} {
		sym := s + ".NS"
		symbols = append(symbols, sym)
		prices.series[sym] = trendSeries(260, 100+float64(i), 0.5)
	}

	cfg := testConfig()
	cfg.Run.BatchSize = 3

	res, err := newTestPipeline(cfg, prices, &fakeFundamentals{}, &fakePromoter{}).Run(context.Background(), symbols, ModeSell)
	require.NoError(t, err)

	assert.Equal(t, symbols, tickers(res.Rows))
	assert.Equal(t, int32(7), prices.calls.Load())
	for _, row := range res.Rows {
		assert.True(t, row.Technical.PriceAbove200D.True())
	}
}

func TestPipeline_ThrottledWaitsPerSymbol(t *testing.T) {
	cfg := testConfig()
	cfg.Run.Throttle = true
	limiter := &countingLimiter{}

	p := NewPipeline(cfg, Providers{Prices: &fakePrices{}, Fundamentals: &fakeFundamentals{}, Promoter: &fakePromoter{}}, limiter, logger.NewNop())

	res, err := p.Run(context.Background(), []string{"A.NS", "B.NS", "C.NS"}, ModeSell)
	require.NoError(t, err)

	assert.Len(t, res.Rows, 3)
	// three symbols in the technical phase, three in enrichment
	assert.Equal(t, int32(6), limiter.waits.Load())
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, throttled := range []bool{true, false} {
		cfg := testConfig()
		cfg.Run.Throttle = throttled

		_, err := newTestPipeline(cfg, &fakePrices{}, &fakeFundamentals{}, &fakePromoter{}).Run(ctx, []string{"A.NS"}, ModeBuy)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestPipeline_ResultMetadata(t *testing.T) {
	cfg := testConfig()
	res, err := newTestPipeline(cfg, &fakePrices{}, &fakeFundamentals{}, &fakePromoter{}).Run(context.Background(), []string{"A.NS"}, ModeBuy)
	require.NoError(t, err)

	hash, err := screenconfig.Hash(cfg)
	require.NoError(t, err)

	assert.Equal(t, hash, res.ConfigHash)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.RunID))
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
	assert.Equal(t, 1, res.Stats.Universe)
	assert.Equal(t, 1, res.Stats.Output)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "buy", ModeBuy.String())
	assert.Equal(t, "sell", ModeSell.String())

	text, err := ModeSell.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "sell", string(text))
}
