package selection

import (
	"context"
	"sort"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/pkg/logger"
)

// Ranker scores rows by the criteria they satisfy and orders them
type Ranker struct {
	criteria []Criterion
	logger   *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(criteria []Criterion, log *logger.Logger) *Ranker {
	return &Ranker{
		criteria: criteria,
		logger:   log.Component("ranker"),
	}
}

// Score sums the weights of the satisfied criteria. Unknown and failed
// conditions contribute nothing; filter enablement does not matter.
func (r *Ranker) Score(row contracts.ScreenRow) float64 {
	var score float64
	for _, c := range r.criteria {
		if c.Eval(row) == Pass {
			score += c.Weight
		}
	}
	return score
}

// ScoreAll scores every row and keeps the input order
func (r *Ranker) ScoreAll(ctx context.Context, rows []contracts.ScreenRow) []contracts.ScreenRow {
	scored := make([]contracts.ScreenRow, len(rows))
	for i, row := range rows {
		scored[i] = row.WithScore(r.Score(row))
	}
	return scored
}

// Rank scores rows and orders them by score, then market cap, both
// descending. Unknown market caps go last; remaining ties keep input order.
func (r *Ranker) Rank(ctx context.Context, rows []contracts.ScreenRow) []contracts.ScreenRow {
	ranked := r.ScoreAll(ctx, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total_stocks": len(ranked),
			"top_score":    ranked[0].Score().Or(0),
			"top_ticker":   ranked[0].Ticker,
		}).Info("Ranking completed")
	}

	return ranked
}

// less reports whether a ranks ahead of b
func less(a, b contracts.ScreenRow) bool {
	sa, sb := a.Score().Or(0), b.Score().Or(0)
	if sa != sb {
		return sa > sb
	}

	ma, okA := a.Fundamentals().MarketCap.Get()
	mb, okB := b.Fundamentals().MarketCap.Get()
	switch {
	case okA && okB:
		return ma > mb
	case okA != okB:
		return okA
	default:
		return false
	}
}
