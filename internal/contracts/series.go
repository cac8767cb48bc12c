package contracts

import (
	"math"
	"sort"
	"time"
)

// Bar is one daily observation. Non-finite fields mean the value is missing.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an immutable, date-ascending sequence of bars.
// Gaps (holidays, missing days) are allowed.
type PriceSeries struct {
	bars []Bar
}

// NewPriceSeries copies bars, drops rows without a finite close, sorts them
// ascending by date and keeps the last bar for a repeated date.
func NewPriceSeries(bars []Bar) PriceSeries {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(b.Date) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}

	return PriceSeries{bars: dedup}
}

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s.bars)
}

// Empty reports whether the series has no bars
func (s PriceSeries) Empty() bool {
	return len(s.bars) == 0
}

// Bars returns a copy of the bars
func (s PriceSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Last returns the most recent bar
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Closes returns the close column
func (s PriceSeries) Closes() []float64 {
	return s.column(func(b Bar) float64 { return b.Close })
}

// Highs returns the high column
func (s PriceSeries) Highs() []float64 {
	return s.column(func(b Bar) float64 { return b.High })
}

// Lows returns the low column
func (s PriceSeries) Lows() []float64 {
	return s.column(func(b Bar) float64 { return b.Low })
}

// Volumes returns the volume column
func (s PriceSeries) Volumes() []float64 {
	return s.column(func(b Bar) float64 { return b.Volume })
}

func (s PriceSeries) column(get func(Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = get(b)
	}
	return out
}
