package contracts

// ScreenRow is one ticker moving through the pipeline. Enrichment returns a
// new row; the receiver is never modified.
type ScreenRow struct {
	Ticker    string            `json:"ticker"`
	Technical TechnicalSnapshot `json:"technical"`

	fundamentals *FundamentalSnapshot
	promoter     *PromoterSnapshot
	score        Float
}

// NewScreenRow starts a row from the technical phase
func NewScreenRow(ticker string, tech TechnicalSnapshot) ScreenRow {
	return ScreenRow{Ticker: ticker, Technical: tech}
}

// WithFundamentals returns a copy carrying f
func (r ScreenRow) WithFundamentals(f FundamentalSnapshot) ScreenRow {
	r.fundamentals = &f
	return r
}

// WithPromoter returns a copy carrying p
func (r ScreenRow) WithPromoter(p PromoterSnapshot) ScreenRow {
	r.promoter = &p
	return r
}

// WithScore returns a copy carrying score
func (r ScreenRow) WithScore(score float64) ScreenRow {
	r.score = Some(score)
	return r
}

// Enriched reports whether the enrichment phase reached this row
func (r ScreenRow) Enriched() bool {
	return r.fundamentals != nil && r.promoter != nil
}

// Fundamentals returns the fundamentals, all-unknown when absent
func (r ScreenRow) Fundamentals() FundamentalSnapshot {
	if r.fundamentals == nil {
		return FundamentalSnapshot{}
	}
	return *r.fundamentals
}

// Promoter returns the promoter snapshot, all-unknown when absent
func (r ScreenRow) Promoter() PromoterSnapshot {
	if r.promoter == nil {
		return PromoterSnapshot{}
	}
	return *r.promoter
}

// Score returns the score; unknown until scored
func (r ScreenRow) Score() Float {
	return r.score
}
