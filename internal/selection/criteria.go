package selection

import (
	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/screenconfig"
)

// Verdict is the outcome of one condition for one row
type Verdict int

const (
	Unknown Verdict = iota // an operand is missing; neither satisfies nor violates
	Pass
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Stage says which filter first applies a criterion
type Stage int

const (
	StageTechnical Stage = iota // prefilter and hard filter
	StageEnriched               // hard filter only
)

// Criterion is one named condition. Filter marks conditions the hard
// filters enforce; every criterion contributes Weight to the score on Pass.
type Criterion struct {
	Name   string
	Stage  Stage
	Filter bool
	Weight float64
	Eval   func(row contracts.ScreenRow) Verdict
}

// Scoring weights
const (
	WeightFull = 1.0
	WeightHalf = 0.5
)

// BuildCriteria derives the condition set from the screen config.
// EV/EBITDA participates only when a maximum is configured.
func BuildCriteria(cfg screenconfig.Config) []Criterion {
	tc := cfg.Technical
	vc := cfg.Valuation
	gc := cfg.Growth
	qc := cfg.Quality
	pc := cfg.Promoter

	criteria := []Criterion{
		// === Technical ===
		{
			Name: "price_above_200d", Stage: StageTechnical, Filter: tc.PriceAbove200D, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return isTrue(r.Technical.PriceAbove200D) },
		},
		{
			Name: "sma50_above_200d", Stage: StageTechnical, Filter: tc.SMA50Above200D, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return isTrue(r.Technical.SMA50Above200D) },
		},
		{
			Name: "near_52w_high", Stage: StageTechnical, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atMost(r.Technical.PctBelow52WHigh, tc.WithinPct52WHigh) },
		},
		{
			Name: "rsi_band", Stage: StageTechnical, Filter: true, Weight: WeightHalf,
			Eval: func(r contracts.ScreenRow) Verdict { return between(r.Technical.RSI14, tc.RSIMin, tc.RSIMax) },
		},
		{
			Name: "volume_multiple", Stage: StageTechnical, Filter: true, Weight: WeightHalf,
			Eval: func(r contracts.ScreenRow) Verdict {
				return atLeast(r.Technical.VolumeMultipleVs50D, tc.MinVolumeMultipleVs50D)
			},
		},

		// === Valuation ===
		{
			Name: "pe_range", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return between(r.Fundamentals().PE, vc.MinPE, vc.MaxPE) },
		},
		{
			Name: "pb_max", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atMost(r.Fundamentals().PB, vc.MaxPB) },
		},
	}

	if vc.MaxEVEBITDA != nil {
		maxEV := *vc.MaxEVEBITDA
		criteria = append(criteria, Criterion{
			Name: "ev_ebitda_max", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atMost(r.Fundamentals().EVEBITDA, maxEV) },
		})
	}

	criteria = append(criteria,
		// === Growth ===
		Criterion{
			Name: "revenue_cagr", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atLeast(r.Fundamentals().RevenueCAGR3Y, gc.MinRevenueCAGR3Y) },
		},
		Criterion{
			Name: "eps_cagr", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atLeast(r.Fundamentals().EPSCAGR3Y, gc.MinEPSCAGR3Y) },
		},

		// === Quality ===
		Criterion{
			Name: "roe_min", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atLeast(r.Fundamentals().ROE, qc.MinROE) },
		},
		Criterion{
			Name: "roce_min", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atLeast(r.Fundamentals().ROCE, qc.MinROCE) },
		},
		Criterion{
			Name: "debt_to_equity_max", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atMost(r.Fundamentals().DebtToEquity, qc.MaxDebtToEquity) },
		},
		Criterion{
			Name: "interest_coverage_min", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict {
				return atLeast(r.Fundamentals().InterestCoverage, qc.MinInterestCoverage)
			},
		},

		// === Promoter ===
		Criterion{
			Name: "promoter_change", Stage: StageEnriched, Filter: true, Weight: WeightFull,
			Eval: func(r contracts.ScreenRow) Verdict { return atLeast(r.Promoter().ChangeQoQPts, pc.MinChangeQoQPctPts) },
		},
	)

	return criteria
}

func verdict(ok bool) Verdict {
	if ok {
		return Pass
	}
	return Fail
}

func isTrue(b contracts.Bool) Verdict {
	v, ok := b.Get()
	if !ok {
		return Unknown
	}
	return verdict(v)
}

func atLeast(f contracts.Float, lo float64) Verdict {
	v, ok := f.Get()
	if !ok {
		return Unknown
	}
	return verdict(v >= lo)
}

func atMost(f contracts.Float, hi float64) Verdict {
	v, ok := f.Get()
	if !ok {
		return Unknown
	}
	return verdict(v <= hi)
}

func between(f contracts.Float, lo, hi float64) Verdict {
	v, ok := f.Get()
	if !ok {
		return Unknown
	}
	return verdict(v >= lo && v <= hi)
}
