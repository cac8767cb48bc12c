package selection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/screenconfig"
	"github.com/wonny/nse-screener/pkg/logger"
)

func newTestRanker() *Ranker {
	return NewRanker(BuildCriteria(screenconfig.Default()), logger.NewNop())
}

func TestRanker_Score(t *testing.T) {
	r := newTestRanker()

	assert.InDelta(t, 14.0, r.Score(strongRow("A.NS", 1)), 1e-9)
	assert.Equal(t, 0.0, r.Score(contracts.NewScreenRow("B.NS", contracts.TechnicalSnapshot{})))

	tech := strongTechnical()
	tech.RSI14 = contracts.Some(20)
	assert.InDelta(t, 3.5, r.Score(contracts.NewScreenRow("C.NS", tech)), 1e-9)
}

// Adding a favorable value never lowers the score; an unfavorable or
// unknown one never raises it.
func TestRanker_ScoreMonotone(t *testing.T) {
	r := newTestRanker()

	base := contracts.NewScreenRow("A.NS", contracts.TechnicalSnapshot{}).
		WithFundamentals(contracts.FundamentalSnapshot{}).
		WithPromoter(contracts.PromoterSnapshot{})
	baseScore := r.Score(base)

	good := strongFundamentals(1)
	setters := map[string]func(f *contracts.FundamentalSnapshot, v contracts.Float){
		"pe":   func(f *contracts.FundamentalSnapshot, v contracts.Float) { f.PE = v },
		"pb":   func(f *contracts.FundamentalSnapshot, v contracts.Float) { f.PB = v },
		"roe":  func(f *contracts.FundamentalSnapshot, v contracts.Float) { f.ROE = v },
		"roce": func(f *contracts.FundamentalSnapshot, v contracts.Float) { f.ROCE = v },
		"de":   func(f *contracts.FundamentalSnapshot, v contracts.Float) { f.DebtToEquity = v },
	}
	favorable := map[string]contracts.Float{
		"pe": good.PE, "pb": good.PB, "roe": good.ROE, "roce": good.ROCE, "de": good.DebtToEquity,
	}
	unfavorable := map[string]contracts.Float{
		"pe": contracts.Some(80), "pb": contracts.Some(15), "roe": contracts.Some(2),
		"roce": contracts.Some(1), "de": contracts.Some(3),
	}

	for field, set := range setters {
		t.Run(field, func(t *testing.T) {
			fav := contracts.FundamentalSnapshot{}
			set(&fav, favorable[field])
			assert.Greater(t, r.Score(base.WithFundamentals(fav)), baseScore)

			bad := contracts.FundamentalSnapshot{}
			set(&bad, unfavorable[field])
			assert.Equal(t, baseScore, r.Score(base.WithFundamentals(bad)))

			unknown := contracts.FundamentalSnapshot{}
			set(&unknown, contracts.Unknown())
			assert.Equal(t, baseScore, r.Score(base.WithFundamentals(unknown)))
		})
	}
}

func TestRanker_RankOrdering(t *testing.T) {
	r := newTestRanker()

	weakTech := strongTechnical()
	weakTech.PriceAbove200D = contracts.SomeBool(false)

	noCap := strongFundamentals(0)
	noCap.MarketCap = contracts.Unknown()

	rows := []contracts.ScreenRow{
		contracts.NewScreenRow("NOCAP.NS", strongTechnical()).WithFundamentals(noCap).WithPromoter(strongPromoter()),
		strongRow("SMALL.NS", 1e10),
		contracts.NewScreenRow("LOWER.NS", weakTech).WithFundamentals(strongFundamentals(9e12)).WithPromoter(strongPromoter()),
		strongRow("LARGE.NS", 8e11),
	}

	ranked := r.Rank(context.Background(), rows)
	require.Len(t, ranked, 4)

	assert.Equal(t, []string{"LARGE.NS", "SMALL.NS", "NOCAP.NS", "LOWER.NS"}, tickers(ranked))
	for _, row := range ranked {
		assert.True(t, row.Score().Known())
	}

	// Total order: no later row ranks ahead of an earlier one
	for i := 0; i+1 < len(ranked); i++ {
		assert.False(t, less(ranked[i+1], ranked[i]), "rows %d and %d out of order", i, i+1)
	}
}

func TestRanker_RankTiesKeepInputOrder(t *testing.T) {
	r := newTestRanker()

	rows := []contracts.ScreenRow{
		contracts.NewScreenRow("FIRST.NS", contracts.TechnicalSnapshot{}),
		contracts.NewScreenRow("SECOND.NS", contracts.TechnicalSnapshot{}),
	}

	ranked := r.Rank(context.Background(), rows)
	assert.Equal(t, []string{"FIRST.NS", "SECOND.NS"}, tickers(ranked))
}

func TestRanker_ScoreAllKeepsOrder(t *testing.T) {
	r := newTestRanker()

	rows := []contracts.ScreenRow{
		contracts.NewScreenRow("LOW.NS", contracts.TechnicalSnapshot{}),
		strongRow("HIGH.NS", 1),
	}

	scored := r.ScoreAll(context.Background(), rows)
	assert.Equal(t, []string{"LOW.NS", "HIGH.NS"}, tickers(scored))
	assert.Equal(t, 0.0, scored[0].Score().Or(-1))
	assert.False(t, rows[0].Score().Known(), "input rows are not modified")
}
