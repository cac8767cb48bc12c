// Package indicators computes technical indicators over daily price history.
// Missing inputs propagate as unknown; nothing is zero-filled.
package indicators

import (
	"math"

	"github.com/wonny/nse-screener/internal/contracts"
)

// Indicator parameters
const (
	ShortSMAWindow      = 50
	LongSMAWindow       = 200
	RSIPeriod           = 14
	VolumeWindow        = 50
	VolumeMinPeriods    = 10
	RangeWindow         = 252 // trading sessions in a year
	RangeMinObservation = 20
)

// SMA returns the simple moving average series. Early positions use a
// partial window once half of it (rounded up) is available.
func SMA(closes []float64, window int) []float64 {
	return RollingMean(closes, window, (window+1)/2)
}

// LastSMA returns the SMA for the latest observation. It is known only when
// the full trailing window is present.
func LastSMA(closes []float64, window int) contracts.Float {
	closes = dropMissing(closes)
	if window <= 0 || len(closes) < window {
		return contracts.Unknown()
	}
	return contracts.Some(last(SMA(closes, window)))
}

// RSISeries returns RSI(period) with simple rolling averages of gains and
// losses. Positions without a full window, or with zero average loss, are NaN.
func RSISeries(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := range closes {
		if i == 0 || !finite(closes[i]) || !finite(closes[i-1]) {
			gains[i], losses[i] = math.NaN(), math.NaN()
			continue
		}
		d := closes[i] - closes[i-1]
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}

	avgGain := RollingMean(gains, period, period)
	avgLoss := RollingMean(losses, period, period)

	out := make([]float64, n)
	for i := range out {
		if !finite(avgGain[i]) || !finite(avgLoss[i]) || avgLoss[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// RSI returns RSI(period) for the latest observation
func RSI(closes []float64, period int) contracts.Float {
	closes = dropMissing(closes)
	if period <= 0 {
		return contracts.Unknown()
	}
	return contracts.Some(last(RSISeries(closes, period)))
}

// Range52W returns the highest high and lowest low over the trailing year.
// Each side needs at least RangeMinObservation values.
func Range52W(highs, lows []float64) (contracts.Float, contracts.Float) {
	return extreme(highs, math.Max), extreme(lows, math.Min)
}

func extreme(values []float64, pick func(a, b float64) float64) contracts.Float {
	values = dropMissing(values)
	if len(values) < RangeMinObservation {
		return contracts.Unknown()
	}
	if len(values) > RangeWindow {
		values = values[len(values)-RangeWindow:]
	}

	m := values[0]
	for _, v := range values[1:] {
		m = pick(m, v)
	}
	return contracts.Some(m)
}

// AvgVolume returns the latest volume and its trailing 50-session mean
func AvgVolume(volumes []float64) (latest, avg contracts.Float) {
	volumes = dropMissing(volumes)
	if len(volumes) == 0 {
		return contracts.Unknown(), contracts.Unknown()
	}
	return contracts.Some(last(volumes)),
		contracts.Some(last(RollingMean(volumes, VolumeWindow, VolumeMinPeriods)))
}

// Compute derives the technical snapshot for the latest row of s.
// An empty series yields the all-unknown snapshot.
func Compute(s contracts.PriceSeries) contracts.TechnicalSnapshot {
	if s.Empty() {
		return contracts.TechnicalSnapshot{}
	}

	closes := s.Closes()
	snap := contracts.TechnicalSnapshot{
		Close:  contracts.Some(last(closes)),
		SMA50:  LastSMA(closes, ShortSMAWindow),
		SMA200: LastSMA(closes, LongSMAWindow),
		RSI14:  RSI(closes, RSIPeriod),
	}
	snap.Volume, snap.AvgVolume = AvgVolume(s.Volumes())
	snap.High52W, snap.Low52W = Range52W(s.Highs(), s.Lows())

	snap.PriceAbove200D = snap.Close.Gt(snap.SMA200)
	snap.SMA50Above200D = snap.SMA50.Gt(snap.SMA200)
	snap.PctBelow52WHigh = PctBelowHigh(snap.Close, snap.High52W)
	snap.VolumeMultipleVs50D = VolumeMultiple(snap.Volume, snap.AvgVolume)

	return snap
}

// PctBelowHigh returns how far close sits under the 52-week high, in percent
func PctBelowHigh(close, high contracts.Float) contracts.Float {
	c, ok1 := close.Get()
	h, ok2 := high.Get()
	if !ok1 || !ok2 || h == 0 {
		return contracts.Unknown()
	}
	return contracts.Some((1 - c/h) * 100)
}

// VolumeMultiple returns the latest volume over its 50-session average
func VolumeMultiple(volume, avg contracts.Float) contracts.Float {
	v, ok1 := volume.Get()
	a, ok2 := avg.Get()
	if !ok1 || !ok2 || a <= 0 {
		return contracts.Unknown()
	}
	return contracts.Some(v / a)
}
