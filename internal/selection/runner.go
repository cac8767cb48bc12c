package selection

import (
	"context"
	"fmt"

	"github.com/wonny/nse-screener/internal/contracts"
)

// Runner resolves an index to tickers and screens them. Both the CLI and
// scheduled jobs go through it.
type Runner struct {
	universe contracts.UniverseProvider
	pipeline *Pipeline
	index    string
	limit    int
	mode     Mode
}

// NewRunner creates a runner for one index and mode
func NewRunner(universe contracts.UniverseProvider, pipeline *Pipeline, index string, limit int, mode Mode) *Runner {
	return &Runner{
		universe: universe,
		pipeline: pipeline,
		index:    index,
		limit:    limit,
		mode:     mode,
	}
}

// Mode returns the screen mode
func (r *Runner) Mode() Mode {
	return r.mode
}

// Screen lists the index constituents and runs the pipeline over them.
// Universe errors, including an unknown index, abort before any price fetch.
func (r *Runner) Screen(ctx context.Context) (*Result, error) {
	symbols, err := r.universe.Constituents(ctx, r.index, r.limit)
	if err != nil {
		return nil, fmt.Errorf("load universe %s: %w", r.index, err)
	}

	return r.pipeline.Run(ctx, symbols, r.mode)
}
