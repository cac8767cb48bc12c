package selection

import (
	"context"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/pkg/logger"
)

// Screener applies the hard-cut filters. A row is dropped only when an
// enabled condition fails; unknown values pass.
type Screener struct {
	criteria []Criterion
	logger   *logger.Logger
}

// FilterReport counts what a filter pass dropped, keyed by the first failing condition
type FilterReport struct {
	Input    int            `json:"input"`
	Passed   int            `json:"passed"`
	Filtered map[string]int `json:"filtered"`
}

// NewScreener creates a new screener
func NewScreener(criteria []Criterion, log *logger.Logger) *Screener {
	return &Screener{
		criteria: criteria,
		logger:   log.Component("screener"),
	}
}

// Prefilter applies the enabled technical conditions. It runs before any
// fundamentals are fetched.
func (s *Screener) Prefilter(ctx context.Context, rows []contracts.ScreenRow) ([]contracts.ScreenRow, FilterReport) {
	passed, report := s.apply(rows, func(c Criterion) bool { return c.Stage == StageTechnical })

	s.logger.WithFields(map[string]interface{}{
		"total_input":  report.Input,
		"passed":       report.Passed,
		"filtered_out": report.Input - report.Passed,
		"filters":      report.Filtered,
	}).Info("Technical prefilter completed")

	return passed, report
}

// HardFilter applies every enabled condition to enriched rows
func (s *Screener) HardFilter(ctx context.Context, rows []contracts.ScreenRow) ([]contracts.ScreenRow, FilterReport) {
	passed, report := s.apply(rows, func(Criterion) bool { return true })

	s.logger.WithFields(map[string]interface{}{
		"total_input":  report.Input,
		"passed":       report.Passed,
		"filtered_out": report.Input - report.Passed,
		"filters":      report.Filtered,
	}).Info("Hard filter completed")

	return passed, report
}

func (s *Screener) apply(rows []contracts.ScreenRow, include func(Criterion) bool) ([]contracts.ScreenRow, FilterReport) {
	passed := make([]contracts.ScreenRow, 0, len(rows))
	filtered := make(map[string]int)

	for _, row := range rows {
		if reason := s.checkConditions(row, include); reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, row)
	}

	return passed, FilterReport{Input: len(rows), Passed: len(passed), Filtered: filtered}
}

// checkConditions returns the first failing enabled condition, or "" if the row passes
func (s *Screener) checkConditions(row contracts.ScreenRow, include func(Criterion) bool) string {
	for _, c := range s.criteria {
		if !c.Filter || !include(c) {
			continue
		}
		if c.Eval(row) == Fail {
			return c.Name
		}
	}
	return ""
}
