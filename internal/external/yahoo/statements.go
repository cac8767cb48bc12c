package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/fundamentals"
)

// statementYears bounds how far back annual series are requested
const statementYears = 6

// Series names requested from the fundamentals timeseries endpoint
const (
	typeNetIncome          = "annualNetIncome"
	typeStockholdersEquity = "annualStockholdersEquity"
	typeEBIT               = "annualEBIT"
	typeTotalAssets        = "annualTotalAssets"
	typeCurrentLiabilities = "annualCurrentLiabilities"
	typeTotalDebt          = "annualTotalDebt"
	typeInterestExpense    = "annualInterestExpense"
	typeTotalRevenue       = "annualTotalRevenue"
	typeDilutedEPS         = "annualDilutedEPS"
	typeEBITDA             = "annualEBITDA"
	typeCash               = "annualCashAndCashEquivalents"
	typeMarketCap          = "trailingMarketCap"
	typePE                 = "trailingPeRatio"
	typePB                 = "trailingPbRatio"
)

var statementTypes = []string{
	typeNetIncome, typeStockholdersEquity, typeEBIT, typeTotalAssets,
	typeCurrentLiabilities, typeTotalDebt, typeInterestExpense, typeTotalRevenue,
	typeDilutedEPS, typeEBITDA, typeCash, typeMarketCap, typePE, typePB,
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Type []string `json:"type"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

// Statements fetches annual statement lines and trailing valuation ratios
func (c *Client) Statements(ctx context.Context, symbol string) (fundamentals.Statements, error) {
	end := c.now().UTC()
	start := end.AddDate(-statementYears, 0, 0)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("type", strings.Join(statementTypes, ","))
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Unix()))

	fullURL := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s",
		c.baseURL, url.PathEscape(symbol), params.Encode())

	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return fundamentals.Statements{}, fmt.Errorf("statements %s: %w", symbol, err)
	}

	st, err := parseTimeseries(body)
	if err != nil {
		return fundamentals.Statements{}, fmt.Errorf("statements %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"revenue_yrs": len(st.TotalRevenue),
		"net_inc_yrs": len(st.NetIncome),
		"market_cap":  st.MarketCap.Known(),
		"trailing_pe": st.PE.Known(),
	}).Debug("Fetched annual statements")

	return st, nil
}

// parseTimeseries maps the timeseries payload onto Statements. Each result
// names its series in meta.type and carries the points under that key.
func parseTimeseries(body []byte) (fundamentals.Statements, error) {
	var resp timeseriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fundamentals.Statements{}, fmt.Errorf("decode timeseries: %w", err)
	}
	if e := resp.Timeseries.Error; e != nil {
		return fundamentals.Statements{}, fmt.Errorf("timeseries error %s: %s", e.Code, e.Description)
	}

	series := make(map[string][]float64)
	for _, result := range resp.Timeseries.Result {
		var meta timeseriesMeta
		if raw, ok := result["meta"]; !ok || json.Unmarshal(raw, &meta) != nil || len(meta.Type) == 0 {
			continue
		}
		name := meta.Type[0]

		raw, ok := result[name]
		if !ok {
			continue
		}
		var points []*timeseriesPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return fundamentals.Statements{}, fmt.Errorf("decode %s: %w", name, err)
		}
		series[name] = values(points)
	}

	return fundamentals.Statements{
		NetIncome:          series[typeNetIncome],
		StockholdersEquity: series[typeStockholdersEquity],
		EBIT:               series[typeEBIT],
		TotalAssets:        series[typeTotalAssets],
		CurrentLiabilities: series[typeCurrentLiabilities],
		TotalDebt:          series[typeTotalDebt],
		InterestExpense:    series[typeInterestExpense],
		TotalRevenue:       series[typeTotalRevenue],
		DilutedEPS:         series[typeDilutedEPS],
		EBITDA:             series[typeEBITDA],
		Cash:               series[typeCash],
		MarketCap:          latestValue(series[typeMarketCap]),
		PE:                 latestValue(series[typePE]),
		PB:                 latestValue(series[typePB]),
	}, nil
}

// values orders points by date and drops gaps (null entries or null raw values)
func values(points []*timeseriesPoint) []float64 {
	kept := make([]*timeseriesPoint, 0, len(points))
	for _, p := range points {
		if p != nil && p.ReportedValue.Raw != nil {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].AsOfDate < kept[j].AsOfDate
	})

	out := make([]float64, len(kept))
	for i, p := range kept {
		out[i] = *p.ReportedValue.Raw
	}
	return out
}

func latestValue(v []float64) contracts.Float {
	if len(v) == 0 {
		return contracts.Unknown()
	}
	return contracts.Some(v[len(v)-1])
}
