package screenconfig

import "time"

// Config is the complete screen definition. It is immutable once loaded;
// CLI overrides produce a modified copy.
type Config struct {
	Universe  UniverseConfig  `yaml:"universe" json:"universe"`
	Valuation ValuationConfig `yaml:"valuation" json:"valuation"`
	Growth    GrowthConfig    `yaml:"growth" json:"growth"`
	Quality   QualityConfig   `yaml:"quality" json:"quality"`
	Promoter  PromoterConfig  `yaml:"promoter" json:"promoter"`
	Technical TechnicalConfig `yaml:"technical" json:"technical"`
	Run       RunConfig       `yaml:"run" json:"run"`
}

// UniverseConfig selects the index to screen
type UniverseConfig struct {
	Name  string `yaml:"name" json:"name"`   // NIFTY50, NIFTY200, NIFTY500
	Limit int    `yaml:"limit" json:"limit"` // 0 = all constituents
}

// ValuationConfig bounds valuation ratios
type ValuationConfig struct {
	MinPE       float64  `yaml:"min_pe" json:"min_pe"`
	MaxPE       float64  `yaml:"max_pe" json:"max_pe"`
	MaxPB       float64  `yaml:"max_pb" json:"max_pb"`
	MaxEVEBITDA *float64 `yaml:"max_ev_ebitda" json:"max_ev_ebitda"` // nil = not applied
}

// GrowthConfig sets minimum 3-year growth rates, in percent
type GrowthConfig struct {
	MinRevenueCAGR3Y float64 `yaml:"min_revenue_cagr_3y" json:"min_revenue_cagr_3y"`
	MinEPSCAGR3Y     float64 `yaml:"min_eps_cagr_3y" json:"min_eps_cagr_3y"`
}

// QualityConfig sets return and leverage limits
type QualityConfig struct {
	MinROE              float64 `yaml:"min_roe" json:"min_roe"`
	MinROCE             float64 `yaml:"min_roce" json:"min_roce"`
	MaxDebtToEquity     float64 `yaml:"max_debt_to_equity" json:"max_debt_to_equity"`
	MinInterestCoverage float64 `yaml:"min_interest_coverage" json:"min_interest_coverage"`
}

// PromoterConfig sets ownership-change limits
type PromoterConfig struct {
	MinChangeQoQPctPts float64  `yaml:"min_promoter_change_qoq_pct_pts" json:"min_promoter_change_qoq_pct_pts"`
	MaxPledgePercent   *float64 `yaml:"max_pledge_percent" json:"max_pledge_percent"` // no free source reports pledges; never evaluated
}

// TechnicalConfig configures the technical prefilter
type TechnicalConfig struct {
	PriceAbove200D         bool    `yaml:"price_above_200d" json:"price_above_200d"`
	SMA50Above200D         bool    `yaml:"sma50_above_200d" json:"sma50_above_200d"`
	WithinPct52WHigh       float64 `yaml:"within_pct_52w_high" json:"within_pct_52w_high"`
	RSIMin                 float64 `yaml:"rsi_min" json:"rsi_min"`
	RSIMax                 float64 `yaml:"rsi_max" json:"rsi_max"`
	MinVolumeMultipleVs50D float64 `yaml:"min_volume_multiple_vs_50d" json:"min_volume_multiple_vs_50d"`
}

// RunConfig controls fetching
type RunConfig struct {
	LookbackDays    int           `yaml:"lookback_days" json:"lookback_days"`
	BatchSize       int           `yaml:"batch_size" json:"batch_size"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" json:"http_timeout"`
	Throttle        bool          `yaml:"throttle" json:"throttle"` // sequential fetch with a pause between symbols
	Pause           time.Duration `yaml:"pause" json:"pause"`
	UseInfoFallback bool          `yaml:"use_info_fallback" json:"use_info_fallback"`
	FundamentalsCap *int          `yaml:"fundamentals_max_symbols" json:"fundamentals_max_symbols"` // nil = no cap
}

// Default returns the stock screen definition
func Default() Config {
	maxEVEBITDA := 20.0
	maxPledge := 5.0
	capSymbols := 150

	return Config{
		Universe: UniverseConfig{
			Name: "NIFTY500",
		},
		Valuation: ValuationConfig{
			MinPE:       5,
			MaxPE:       35,
			MaxPB:       6,
			MaxEVEBITDA: &maxEVEBITDA,
		},
		Growth: GrowthConfig{
			MinRevenueCAGR3Y: 10,
			MinEPSCAGR3Y:     10,
		},
		Quality: QualityConfig{
			MinROE:              12,
			MinROCE:             15,
			MaxDebtToEquity:     0.8,
			MinInterestCoverage: 3,
		},
		Promoter: PromoterConfig{
			MinChangeQoQPctPts: 0.1,
			MaxPledgePercent:   &maxPledge,
		},
		Technical: TechnicalConfig{
			PriceAbove200D:         true,
			SMA50Above200D:         true,
			WithinPct52WHigh:       10,
			RSIMin:                 45,
			RSIMax:                 70,
			MinVolumeMultipleVs50D: 1.3,
		},
		Run: RunConfig{
			LookbackDays:    420,
			BatchSize:       50,
			HTTPTimeout:     20 * time.Second,
			Throttle:        true,
			Pause:           800 * time.Millisecond,
			UseInfoFallback: false,
			FundamentalsCap: &capSymbols,
		},
	}
}

// WithUniverse returns a copy with the index and limit replaced
func (c Config) WithUniverse(name string, limit int) Config {
	c.Universe = UniverseConfig{Name: name, Limit: limit}
	return c
}

// Cap returns the fundamentals cap and whether one applies
func (c Config) Cap() (int, bool) {
	if c.Run.FundamentalsCap == nil {
		return 0, false
	}
	return *c.Run.FundamentalsCap, true
}
