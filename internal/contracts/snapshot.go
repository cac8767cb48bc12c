package contracts

// TechnicalSnapshot is the latest-row view of a ticker's indicators.
// The zero value is all-unknown.
type TechnicalSnapshot struct {
	Close     Float `json:"close"`
	SMA50     Float `json:"sma50"`
	SMA200    Float `json:"sma200"`
	RSI14     Float `json:"rsi14"`
	Volume    Float `json:"volume"`
	AvgVolume Float `json:"avg_volume_50"`
	High52W   Float `json:"high_52w"`
	Low52W    Float `json:"low_52w"`

	PriceAbove200D      Bool  `json:"price_above_200d"`
	SMA50Above200D      Bool  `json:"sma50_above_200d"`
	PctBelow52WHigh     Float `json:"pct_below_52w_high"`
	VolumeMultipleVs50D Float `json:"volume_multiple_vs_50d"`
}

// FundamentalSnapshot holds valuation, growth and quality ratios.
// Percent-valued fields (ROE, ROCE, CAGRs) are expressed in percent.
type FundamentalSnapshot struct {
	MarketCap        Float `json:"market_cap"`
	PE               Float `json:"pe"`
	PB               Float `json:"pb"`
	ROE              Float `json:"roe"`
	ROCE             Float `json:"roce"`
	DebtToEquity     Float `json:"debt_to_equity"`
	InterestCoverage Float `json:"interest_coverage"`
	RevenueCAGR3Y    Float `json:"revenue_cagr_3y"`
	EPSCAGR3Y        Float `json:"eps_cagr_3y"`
	EVEBITDA         Float `json:"ev_ebitda"`
}

// PromoterSnapshot holds promoter holding for the two latest quarters
type PromoterSnapshot struct {
	LatestPercent Float `json:"latest_percent"`
	PrevPercent   Float `json:"prev_percent"`
	ChangeQoQPts  Float `json:"change_qoq_pct_pts"`
}
