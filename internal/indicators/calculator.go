package indicators

import (
	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/pkg/logger"
)

// Calculator computes snapshots and logs what it could not derive
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new technical calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log.Component("indicators"),
	}
}

// Snapshot computes the technical snapshot for one symbol
func (c *Calculator) Snapshot(symbol string, s contracts.PriceSeries) contracts.TechnicalSnapshot {
	snap := Compute(s)

	c.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"bars":        s.Len(),
		"close":       snap.Close.Format(2, "NA"),
		"sma200":      snap.SMA200.Format(2, "NA"),
		"rsi14":       snap.RSI14.Format(2, "NA"),
		"pct_below_h": snap.PctBelow52WHigh.Format(2, "NA"),
	}).Debug("Calculated technical snapshot")

	return snap
}
