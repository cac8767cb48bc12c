package screenconfig

import (
	"fmt"
	"time"
)

// Indices lists the supported universe names
var Indices = []string{"NIFTY50", "NIFTY200", "NIFTY500"}

// ValidationError is a fatal configuration problem
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a configuration that runs but likely yields unknown values
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg Config) error {
	// === Universe ===
	if !knownIndex(cfg.Universe.Name) {
		return ValidationError{"universe.name", fmt.Sprintf("must be one of %v", Indices)}
	}
	if cfg.Universe.Limit < 0 {
		return ValidationError{"universe.limit", "must be >= 0"}
	}

	// === Valuation ===
	if cfg.Valuation.MinPE > cfg.Valuation.MaxPE {
		return ValidationError{"valuation", "min_pe must be <= max_pe"}
	}
	if cfg.Valuation.MaxPB < 0 {
		return ValidationError{"valuation.max_pb", "must be >= 0"}
	}
	if cfg.Valuation.MaxEVEBITDA != nil && *cfg.Valuation.MaxEVEBITDA < 0 {
		return ValidationError{"valuation.max_ev_ebitda", "must be >= 0"}
	}

	// === Quality ===
	if cfg.Quality.MaxDebtToEquity < 0 {
		return ValidationError{"quality.max_debt_to_equity", "must be >= 0"}
	}

	// === Promoter ===
	if p := cfg.Promoter.MaxPledgePercent; p != nil && (*p < 0 || *p > 100) {
		return ValidationError{"promoter.max_pledge_percent", "must be in [0, 100]"}
	}

	// === Technical ===
	tc := cfg.Technical
	if tc.RSIMin < 0 || tc.RSIMax > 100 {
		return ValidationError{"technical", "rsi_min and rsi_max must be in [0, 100]"}
	}
	if tc.RSIMin > tc.RSIMax {
		return ValidationError{"technical", "rsi_min must be <= rsi_max"}
	}
	if tc.WithinPct52WHigh < 0 {
		return ValidationError{"technical.within_pct_52w_high", "must be >= 0"}
	}
	if tc.MinVolumeMultipleVs50D < 0 {
		return ValidationError{"technical.min_volume_multiple_vs_50d", "must be >= 0"}
	}

	// === Run ===
	if cfg.Run.LookbackDays <= 0 {
		return ValidationError{"run.lookback_days", "must be > 0"}
	}
	if cfg.Run.BatchSize <= 0 {
		return ValidationError{"run.batch_size", "must be > 0"}
	}
	if cfg.Run.HTTPTimeout <= 0 {
		return ValidationError{"run.http_timeout", "must be > 0"}
	}
	if cfg.Run.Pause < 0 {
		return ValidationError{"run.pause", "must be >= 0"}
	}
	if c := cfg.Run.FundamentalsCap; c != nil && *c < 0 {
		return ValidationError{"run.fundamentals_max_symbols", "must be >= 0"}
	}

	return nil
}

// Check returns soft warnings. It never fails.
func Check(cfg Config) []Warning {
	var warnings []Warning

	// ~252 sessions per 365 calendar days; the 200-day SMA needs 200 sessions
	if cfg.Run.LookbackDays < 300 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_LOOKBACK",
			Message: fmt.Sprintf("lookback_days=%d is unlikely to cover 200 trading sessions; sma200 will be unknown", cfg.Run.LookbackDays),
		})
	}

	if cfg.Promoter.MaxPledgePercent != nil {
		warnings = append(warnings, Warning{
			Code:    "PLEDGE_UNAVAILABLE",
			Message: "max_pledge_percent is set but no data source reports pledged shares; it is not applied",
		})
	}

	if !cfg.Run.Throttle && cfg.Run.BatchSize > 100 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_BATCH",
			Message: "unthrottled batches above 100 symbols tend to be rate limited by the price source",
		})
	}

	if cfg.Run.Throttle && cfg.Run.Pause < 200*time.Millisecond {
		warnings = append(warnings, Warning{
			Code:    "SHORT_PAUSE",
			Message: fmt.Sprintf("pause=%s is shorter than the source tolerates for sequential downloads", cfg.Run.Pause),
		})
	}

	return warnings
}

func knownIndex(name string) bool {
	for _, idx := range Indices {
		if idx == name {
			return true
		}
	}
	return false
}
