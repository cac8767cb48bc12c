package yahoo

import (
	"context"
	"fmt"

	finance "github.com/piquette/finance-go"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/fundamentals"
)

// Quote fetches market cap, trailing PE and price-to-book from the equity quote
func (c *Client) Quote(ctx context.Context, symbol string) (fundamentals.Quote, error) {
	var eq *finance.Equity
	err := c.paced(ctx, func() error {
		q, err := c.equity(symbol)
		if err != nil {
			return err
		}
		eq = q
		return nil
	})
	if err != nil {
		return fundamentals.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if eq == nil {
		return fundamentals.Quote{}, fmt.Errorf("quote %s: empty response", symbol)
	}

	return quoteFromEquity(eq), nil
}

// quoteFromEquity treats non-positive values as not reported
func quoteFromEquity(eq *finance.Equity) fundamentals.Quote {
	positive := func(v float64) contracts.Float {
		if v <= 0 {
			return contracts.Unknown()
		}
		return contracts.Some(v)
	}

	return fundamentals.Quote{
		MarketCap: positive(float64(eq.MarketCap)),
		PE:        positive(eq.TrailingPE),
		PB:        positive(eq.PriceToBook),
	}
}
