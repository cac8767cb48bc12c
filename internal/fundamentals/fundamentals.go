// Package fundamentals derives valuation, growth and quality ratios from
// annual financial statements.
package fundamentals

import (
	"math"

	"github.com/wonny/nse-screener/internal/contracts"
)

// CAGRYears is the span of the growth rates
const CAGRYears = 3

// Statements holds annual statement lines, each ordered oldest to latest.
// Missing years are simply absent; non-finite entries are ignored.
type Statements struct {
	NetIncome          []float64
	StockholdersEquity []float64
	EBIT               []float64
	TotalAssets        []float64
	CurrentLiabilities []float64
	TotalDebt          []float64
	InterestExpense    []float64
	TotalRevenue       []float64
	DilutedEPS         []float64
	EBITDA             []float64
	Cash               []float64

	// Trailing ratios published alongside the statements
	MarketCap contracts.Float
	PE        contracts.Float
	PB        contracts.Float
}

// Quote carries ratios from the live quote, used to fill gaps in the
// trailing statement ratios.
type Quote struct {
	MarketCap contracts.Float
	PE        contracts.Float
	PB        contracts.Float
}

// Assemble computes the snapshot. quote may be nil.
func Assemble(st Statements, quote *Quote) contracts.FundamentalSnapshot {
	snap := contracts.FundamentalSnapshot{
		MarketCap: st.MarketCap,
		PE:        st.PE,
		PB:        st.PB,
	}

	if quote != nil {
		snap.MarketCap = orElse(snap.MarketCap, quote.MarketCap)
		snap.PE = orElse(snap.PE, quote.PE)
		snap.PB = orElse(snap.PB, quote.PB)
	}

	snap.ROE = ROE(st.NetIncome, st.StockholdersEquity)
	snap.ROCE = ROCE(st.EBIT, st.TotalAssets, st.CurrentLiabilities)
	snap.DebtToEquity = DebtToEquity(st.TotalDebt, st.StockholdersEquity)
	snap.InterestCoverage = InterestCoverage(st.EBIT, st.InterestExpense)
	snap.RevenueCAGR3Y = CAGR(st.TotalRevenue, CAGRYears)

	// Per-share growth equals net income growth when the share count is
	// unchanged, so net income stands in when diluted EPS is not reported.
	snap.EPSCAGR3Y = CAGR(st.DilutedEPS, CAGRYears)
	if !snap.EPSCAGR3Y.Known() {
		snap.EPSCAGR3Y = CAGR(st.NetIncome, CAGRYears)
	}

	snap.EVEBITDA = EVEBITDA(snap.MarketCap, st.TotalDebt, st.Cash, st.EBITDA)

	return snap
}

// ROE is the latest net income over the average of the last two equity values, in percent
func ROE(netIncome, equity []float64) contracts.Float {
	ni := clean(netIncome)
	eq := clean(equity)
	if len(ni) < 2 || len(eq) < 2 {
		return contracts.Unknown()
	}

	eqLast, eqPrev := eq[len(eq)-1], eq[len(eq)-2]
	if eqLast == 0 || eqPrev == 0 {
		return contracts.Unknown()
	}
	avg := (eqLast + eqPrev) / 2
	if avg == 0 {
		return contracts.Unknown()
	}

	return contracts.Some(latest(ni) / avg * 100)
}

// ROCE is EBIT over capital employed (total assets less current liabilities), in percent
func ROCE(ebit, totalAssets, currentLiabilities []float64) contracts.Float {
	e, ok1 := latestOK(ebit)
	a, ok2 := latestOK(totalAssets)
	l, ok3 := latestOK(currentLiabilities)
	if !ok1 || !ok2 || !ok3 {
		return contracts.Unknown()
	}

	employed := a - l
	if employed == 0 {
		return contracts.Unknown()
	}
	return contracts.Some(e / employed * 100)
}

// DebtToEquity is the latest total debt over the latest equity
func DebtToEquity(totalDebt, equity []float64) contracts.Float {
	d, ok1 := latestOK(totalDebt)
	e, ok2 := latestOK(equity)
	if !ok1 || !ok2 || e == 0 {
		return contracts.Unknown()
	}
	return contracts.Some(d / e)
}

// InterestCoverage is EBIT over the absolute interest expense
func InterestCoverage(ebit, interestExpense []float64) contracts.Float {
	e, ok1 := latestOK(ebit)
	i, ok2 := latestOK(interestExpense)
	if !ok1 || !ok2 || i == 0 {
		return contracts.Unknown()
	}
	return contracts.Some(e / math.Abs(i))
}

// CAGR is the compound annual growth from the oldest of the latest years+1
// values to the latest, in percent. Both ends must be positive.
func CAGR(values []float64, years int) contracts.Float {
	v := clean(values)
	if years <= 0 || len(v) < years+1 {
		return contracts.Unknown()
	}

	window := v[len(v)-(years+1):]
	first, last := window[0], window[len(window)-1]
	if first <= 0 || last <= 0 {
		return contracts.Unknown()
	}

	return contracts.Some(math.Pow(last/first, 1/float64(years))*100 - 100)
}

// EVEBITDA is (market cap + debt - cash) over EBITDA. Missing debt or cash count as zero.
func EVEBITDA(marketCap contracts.Float, totalDebt, cash, ebitda []float64) contracts.Float {
	mcap, ok := marketCap.Get()
	if !ok {
		return contracts.Unknown()
	}
	e, ok := latestOK(ebitda)
	if !ok || e == 0 {
		return contracts.Unknown()
	}

	debt, _ := latestOK(totalDebt)
	c, _ := latestOK(cash)

	return contracts.Some((mcap + debt - c) / e)
}

// NeedsQuote reports whether any trailing ratio is missing
func NeedsQuote(st Statements) bool {
	return !st.MarketCap.Known() || !st.PE.Known() || !st.PB.Known()
}

func orElse(primary, fallback contracts.Float) contracts.Float {
	if primary.Known() {
		return primary
	}
	return fallback
}

func clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func latest(values []float64) float64 {
	return values[len(values)-1]
}

func latestOK(values []float64) (float64, bool) {
	v := clean(values)
	if len(v) == 0 {
		return 0, false
	}
	return latest(v), true
}
