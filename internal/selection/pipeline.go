package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/indicators"
	"github.com/wonny/nse-screener/internal/screenconfig"
	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/throttle"
)

// Mode selects between the buy-side screen and the sell-side review
type Mode int

const (
	ModeBuy Mode = iota
	ModeSell
)

func (m Mode) String() string {
	if m == ModeSell {
		return "sell"
	}
	return "buy"
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Providers groups the data sources a run needs
type Providers struct {
	Prices       contracts.PriceProvider
	Fundamentals contracts.FundamentalProvider
	Promoter     contracts.PromoterProvider
}

// Stats records how many rows each stage saw
type Stats struct {
	Universe            int          `json:"universe"`
	PriceFailures       int          `json:"price_failures"`
	Prefilter           FilterReport `json:"prefilter"`
	Capped              int          `json:"capped"`
	FundamentalFailures int          `json:"fundamental_failures"`
	PromoterFailures    int          `json:"promoter_failures"`
	HardFilter          FilterReport `json:"hard_filter"`
	Output              int          `json:"output"`
}

// Result is one completed run
type Result struct {
	RunID      uuid.UUID             `json:"run_id"`
	ConfigHash string                `json:"config_hash"`
	Mode       Mode                  `json:"mode"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Rows       []contracts.ScreenRow `json:"-"`
	Stats      Stats                 `json:"stats"`
}

// Pipeline runs the screen: technical phase, prefilter, fundamentals cap,
// enrichment, hard filter, scoring.
type Pipeline struct {
	cfg        screenconfig.Config
	providers  Providers
	calculator *indicators.Calculator
	screener   *Screener
	ranker     *Ranker
	limiter    throttle.Limiter
	logger     *logger.Logger
}

// NewPipeline creates a pipeline. limiter paces symbols when the config
// asks for throttled fetching; nil means no pacing.
func NewPipeline(cfg screenconfig.Config, providers Providers, limiter throttle.Limiter, log *logger.Logger) *Pipeline {
	if limiter == nil {
		limiter = throttle.NoLimit{}
	}
	criteria := BuildCriteria(cfg)

	return &Pipeline{
		cfg:        cfg,
		providers:  providers,
		calculator: indicators.NewCalculator(log),
		screener:   NewScreener(criteria, log),
		ranker:     NewRanker(criteria, log),
		limiter:    limiter,
		logger:     log.Component("pipeline"),
	}
}

// Run screens symbols. Source failures degrade to unknown fields; only
// context cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context, symbols []string, mode Mode) (*Result, error) {
	hash, err := screenconfig.Hash(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}

	res := &Result{
		RunID:      uuid.New(),
		ConfigHash: hash,
		Mode:       mode,
		StartedAt:  time.Now(),
	}
	log := p.logger.WithFields(map[string]interface{}{
		"run_id": res.RunID.String(),
		"mode":   mode.String(),
	})
	log.WithFields(map[string]interface{}{
		"symbols":     len(symbols),
		"config_hash": hash,
		"throttle":    p.cfg.Run.Throttle,
	}).Info("Screen started")

	// 1. Technical phase
	rows, priceFailures, err := p.technicalPhase(ctx, symbols)
	if err != nil {
		return nil, err
	}
	res.Stats.Universe = len(symbols)
	res.Stats.PriceFailures = priceFailures

	// 2. Prefilter
	if mode == ModeBuy {
		rows, res.Stats.Prefilter = p.screener.Prefilter(ctx, rows)
	} else {
		res.Stats.Prefilter = FilterReport{Input: len(rows), Passed: len(rows), Filtered: map[string]int{}}
	}

	// 3. Fundamentals cap
	if n, ok := p.cfg.Cap(); ok && len(rows) > n {
		rows = rows[:n]
	}
	res.Stats.Capped = len(rows)

	// 4. Enrichment
	rows, fundFailures, promFailures, err := p.enrich(ctx, rows)
	if err != nil {
		return nil, err
	}
	res.Stats.FundamentalFailures = fundFailures
	res.Stats.PromoterFailures = promFailures

	// 5. Hard filter, 6. scoring
	if mode == ModeBuy {
		rows, res.Stats.HardFilter = p.screener.HardFilter(ctx, rows)
		rows = p.ranker.Rank(ctx, rows)
	} else {
		res.Stats.HardFilter = FilterReport{Input: len(rows), Passed: len(rows), Filtered: map[string]int{}}
		rows = p.ranker.ScoreAll(ctx, rows)
	}

	res.Rows = rows
	res.Stats.Output = len(rows)
	res.FinishedAt = time.Now()

	log.WithFields(map[string]interface{}{
		"universe":       res.Stats.Universe,
		"price_failures": res.Stats.PriceFailures,
		"prefiltered":    res.Stats.Prefilter.Passed,
		"capped":         res.Stats.Capped,
		"output":         res.Stats.Output,
		"duration":       res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("Screen completed")

	return res, nil
}

// technicalPhase builds one row per symbol in input order. A failed
// history fetch yields an all-unknown technical snapshot.
func (p *Pipeline) technicalPhase(ctx context.Context, symbols []string) ([]contracts.ScreenRow, int, error) {
	rows := make([]contracts.ScreenRow, len(symbols))
	failed := make([]bool, len(symbols))

	err := p.forEach(ctx, len(symbols), func(ctx context.Context, i int) {
		fetch := p.providers.Prices.History(ctx, symbols[i], p.cfg.Run.LookbackDays)
		failed[i] = !fetch.Available
		rows[i] = contracts.NewScreenRow(symbols[i], p.calculator.Snapshot(symbols[i], fetch.OrZero()))
	})
	if err != nil {
		return nil, 0, err
	}

	return rows, count(failed), nil
}

// enrich layers fundamentals and promoter snapshots onto each row. The two
// categories fail independently.
func (p *Pipeline) enrich(ctx context.Context, rows []contracts.ScreenRow) ([]contracts.ScreenRow, int, int, error) {
	out := make([]contracts.ScreenRow, len(rows))
	fundFailed := make([]bool, len(rows))
	promFailed := make([]bool, len(rows))

	err := p.forEach(ctx, len(rows), func(ctx context.Context, i int) {
		row := rows[i]

		f := p.providers.Fundamentals.Fundamentals(ctx, row.Ticker, p.cfg.Run.UseInfoFallback)
		pr := p.providers.Promoter.Promoter(ctx, row.Ticker)

		fundFailed[i] = !f.Available
		promFailed[i] = !pr.Available
		out[i] = row.WithFundamentals(f.OrZero()).WithPromoter(pr.OrZero())
	})
	if err != nil {
		return nil, 0, 0, err
	}

	return out, count(fundFailed), count(promFailed), nil
}

// forEach calls fn for 0..n-1. Throttled runs go one symbol at a time
// behind the limiter; otherwise symbols run in concurrent batches of
// batch_size. fn writes to its own index, so output order is input order.
func (p *Pipeline) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	if p.cfg.Run.Throttle {
		for i := 0; i < n; i++ {
			if err := p.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("screen interrupted: %w", err)
			}
			fn(ctx, i)
		}
		return nil
	}

	batch := p.cfg.Run.BatchSize
	if batch < 1 {
		batch = 1
	}

	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batch)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn(gctx, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("screen interrupted: %w", err)
		}

		p.logger.WithFields(map[string]interface{}{
			"done":  end,
			"total": n,
		}).Debug("Batch completed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("screen interrupted: %w", err)
	}
	return nil
}

func count(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
