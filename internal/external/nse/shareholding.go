package nse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/pkg/httputil"
)

// ErrNoPromoterData means the response had no usable promoter category
var ErrNoPromoterData = errors.New("no promoter shareholding data")

type shareholdingResponse struct {
	Shareholding struct {
		Data []shareholdingCategory `json:"data"`
	} `json:"shareholding"`
}

type shareholdingCategory struct {
	Category string              `json:"category"`
	Data     []shareholdingPoint `json:"data"`
}

type shareholdingPoint struct {
	Percent          flexFloat `json:"percent"`
	QuarterBeginDate string    `json:"quarterBeginDate"`
	QuarterEndDate   string    `json:"quarterEndDate"`
}

// flexFloat accepts a JSON number, a numeric string or null
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" || s == "-" {
		*f = flexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{v: v, ok: true}
	return nil
}

// Shareholding fetches promoter holding for a bare NSE symbol (no ".NS")
func (c *Client) Shareholding(ctx context.Context, symbol string) (contracts.PromoterSnapshot, error) {
	c.prime(ctx)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("section", "shareholding")
	fullURL := fmt.Sprintf("%s/api/quote-equity?%s", c.baseURL, params.Encode())

	body, err := c.api.GetBytes(ctx, fullURL)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			c.resetSession()
		}
		return contracts.PromoterSnapshot{}, fmt.Errorf("shareholding %s: %w", symbol, err)
	}

	snap, err := parseShareholding(body)
	if err != nil {
		return contracts.PromoterSnapshot{}, fmt.Errorf("shareholding %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"latest": snap.LatestPercent.Format(2, "NA"),
		"change": snap.ChangeQoQPts.Format(2, "NA"),
	}).Debug("Fetched promoter shareholding")

	return snap, nil
}

// parseShareholding takes the first category named "promoter...", orders its
// quarters by date and compares the last two reported percentages.
func parseShareholding(body []byte) (contracts.PromoterSnapshot, error) {
	var resp shareholdingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return contracts.PromoterSnapshot{}, fmt.Errorf("decode shareholding: %w", err)
	}

	var points []shareholdingPoint
	for _, cat := range resp.Shareholding.Data {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(cat.Category)), "promoter") {
			points = cat.Data
			break
		}
	}
	if len(points) == 0 {
		return contracts.PromoterSnapshot{}, ErrNoPromoterData
	}

	sort.SliceStable(points, func(i, j int) bool {
		return quarterBefore(points[i].quarterKey(), points[j].quarterKey())
	})

	var percents []float64
	for _, p := range points {
		if p.Percent.ok {
			percents = append(percents, p.Percent.v)
		}
	}
	if len(percents) == 0 {
		return contracts.PromoterSnapshot{}, ErrNoPromoterData
	}

	snap := contracts.PromoterSnapshot{
		LatestPercent: contracts.Some(percents[len(percents)-1]),
	}
	if len(percents) >= 2 {
		prev := percents[len(percents)-2]
		snap.PrevPercent = contracts.Some(prev)
		snap.ChangeQoQPts = contracts.Some(percents[len(percents)-1] - prev)
	}

	return snap, nil
}

func (p shareholdingPoint) quarterKey() string {
	if p.QuarterBeginDate != "" {
		return p.QuarterBeginDate
	}
	return p.QuarterEndDate
}

var quarterLayouts = []string{"02-Jan-2006", "2006-01-02", "02-01-2006", "02 Jan 2006"}

func parseQuarter(s string) (time.Time, bool) {
	for _, layout := range quarterLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// quarterBefore compares dates when both parse, and strings otherwise
func quarterBefore(a, b string) bool {
	ta, okA := parseQuarter(a)
	tb, okB := parseQuarter(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return a < b
}
