package yahoo

import (
	"context"
	"fmt"
	"math"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"

	"github.com/wonny/nse-screener/internal/contracts"
)

// History fetches daily bars covering the last lookbackDays calendar days
func (c *Client) History(ctx context.Context, symbol string, lookbackDays int) (contracts.PriceSeries, error) {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	var raw []finance.ChartBar
	err := c.paced(ctx, func() error {
		bars, err := c.chart(symbol, start, end)
		if err != nil {
			return err
		}
		raw = bars
		return nil
	})
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("chart %s: %w", symbol, err)
	}

	series := contracts.NewPriceSeries(convertBars(raw))

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Fetched price history")

	return series, nil
}

// convertBars maps chart bars to float bars. Yahoo reports untraded
// sessions with zero prices; those become missing values.
func convertBars(raw []finance.ChartBar) []contracts.Bar {
	bars := make([]contracts.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, contracts.Bar{
			Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   price(b.Open),
			High:   price(b.High),
			Low:    price(b.Low),
			Close:  price(b.Close),
			Volume: float64(b.Volume),
		})
	}
	return bars
}

func price(d decimal.Decimal) float64 {
	if !d.IsPositive() {
		return math.NaN()
	}
	f, _ := d.Float64()
	return f
}
