package fundamentals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nse-screener/internal/contracts"
)

func TestROE(t *testing.T) {
	roe := ROE([]float64{80, 120}, []float64{900, 1100})
	require.True(t, roe.Known())
	assert.InDelta(t, 12.0, roe.Or(0), 1e-9)

	assert.False(t, ROE([]float64{120}, []float64{900, 1100}).Known(), "one year of income")
	assert.False(t, ROE([]float64{80, 120}, []float64{0, 1100}).Known(), "zero equity")
	assert.False(t, ROE([]float64{80, 120}, []float64{-1100, 1100}).Known(), "zero average")
}

func TestROCE(t *testing.T) {
	roce := ROCE([]float64{150}, []float64{2000}, []float64{1000})
	assert.InDelta(t, 15.0, roce.Or(0), 1e-9)

	assert.False(t, ROCE([]float64{150}, []float64{1000}, []float64{1000}).Known())
	assert.False(t, ROCE(nil, []float64{2000}, []float64{1000}).Known())
}

func TestDebtToEquity(t *testing.T) {
	assert.InDelta(t, 0.5, DebtToEquity([]float64{100, 500}, []float64{800, 1000}).Or(0), 1e-9)
	assert.False(t, DebtToEquity([]float64{500}, []float64{0}).Known())

	zero := DebtToEquity([]float64{0}, []float64{1000})
	require.True(t, zero.Known(), "debt-free is a known zero")
	assert.Equal(t, 0.0, zero.Or(-1))
}

func TestInterestCoverage(t *testing.T) {
	assert.InDelta(t, 5.0, InterestCoverage([]float64{500}, []float64{-100}).Or(0), 1e-9)
	assert.False(t, InterestCoverage([]float64{500}, []float64{0}).Known())
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		known  bool
	}{
		{"doubling over three years", []float64{100, 130, 160, 200}, (math.Cbrt(2) - 1) * 100, true},
		{"uses latest four", []float64{1, 100, 110, 120, 100}, 0, true},
		{"too short", []float64{100, 120, 140}, 0, false},
		{"negative start", []float64{-10, 20, 30, 40}, 0, false},
		{"zero end", []float64{10, 20, 30, 0}, 0, false},
		{"skips missing", []float64{100, math.NaN(), 130, 160, 200}, (math.Cbrt(2) - 1) * 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CAGR(tt.values, CAGRYears)
			assert.Equal(t, tt.known, got.Known())
			if tt.known {
				assert.InDelta(t, tt.want, got.Or(0), 1e-9)
			}
		})
	}
}

func TestEVEBITDA(t *testing.T) {
	ev := EVEBITDA(contracts.Some(1000), []float64{200}, []float64{100}, []float64{110})
	assert.InDelta(t, 10.0, ev.Or(0), 1e-9)

	noDebt := EVEBITDA(contracts.Some(1000), nil, nil, []float64{100})
	assert.InDelta(t, 10.0, noDebt.Or(0), 1e-9)

	assert.False(t, EVEBITDA(contracts.Unknown(), nil, nil, []float64{100}).Known())
	assert.False(t, EVEBITDA(contracts.Some(1000), nil, nil, []float64{0}).Known())
}

func TestAssemble(t *testing.T) {
	st := Statements{
		NetIncome:          []float64{50, 60, 70, 100},
		StockholdersEquity: []float64{700, 800, 900, 1100},
		EBIT:               []float64{150},
		TotalAssets:        []float64{2000},
		CurrentLiabilities: []float64{1000},
		TotalDebt:          []float64{500},
		InterestExpense:    []float64{30},
		TotalRevenue:       []float64{1000, 1100, 1200, 1331},
		EBITDA:             []float64{200},
		Cash:               []float64{100},
		PE:                 contracts.Some(22),
	}

	snap := Assemble(st, nil)

	assert.InDelta(t, 10.0, snap.ROE.Or(0), 1e-9)
	assert.InDelta(t, 15.0, snap.ROCE.Or(0), 1e-9)
	assert.InDelta(t, 500.0/1100.0, snap.DebtToEquity.Or(0), 1e-9)
	assert.InDelta(t, 5.0, snap.InterestCoverage.Or(0), 1e-9)
	assert.InDelta(t, 10.0, snap.RevenueCAGR3Y.Or(0), 1e-9)
	assert.InDelta(t, (math.Cbrt(2)-1)*100, snap.EPSCAGR3Y.Or(0), 1e-9, "net income stands in for EPS")
	assert.Equal(t, 22.0, snap.PE.Or(0))
	assert.False(t, snap.MarketCap.Known())
	assert.False(t, snap.EVEBITDA.Known(), "no market cap")
}

func TestAssemble_QuoteFillsGaps(t *testing.T) {
	st := Statements{
		PE:         contracts.Some(18),
		EBITDA:     []float64{100},
		DilutedEPS: []float64{10, 11, 12, 13.31},
	}
	quote := &Quote{MarketCap: contracts.Some(1000), PE: contracts.Some(99), PB: contracts.Some(3)}

	require.True(t, NeedsQuote(st))
	snap := Assemble(st, quote)

	assert.Equal(t, 18.0, snap.PE.Or(0), "statement ratio wins")
	assert.Equal(t, 3.0, snap.PB.Or(0))
	assert.Equal(t, 1000.0, snap.MarketCap.Or(0))
	assert.InDelta(t, 10.0, snap.EVEBITDA.Or(0), 1e-9)
	assert.InDelta(t, 10.0, snap.EPSCAGR3Y.Or(0), 1e-9)
}

func TestAssemble_EmptyStatements(t *testing.T) {
	assert.Equal(t, contracts.FundamentalSnapshot{}, Assemble(Statements{}, nil))
}
