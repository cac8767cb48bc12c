// Package export writes screen results as CSV files and console tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/nse-screener/internal/contracts"
	"github.com/wonny/nse-screener/internal/selection"
)

// NA marks a value that could not be computed or fetched
const NA = "NA"

type column struct {
	name  string
	value func(r contracts.ScreenRow) string
}

func num(prec int, get func(r contracts.ScreenRow) contracts.Float) func(contracts.ScreenRow) string {
	return func(r contracts.ScreenRow) string { return get(r).Format(prec, NA) }
}

func flag(get func(r contracts.ScreenRow) contracts.Bool) func(contracts.ScreenRow) string {
	return func(r contracts.ScreenRow) string { return get(r).Format(NA) }
}

// columns lists every exported field. All columns are written even when
// no row has a value for them.
var columns = []column{
	{"ticker", func(r contracts.ScreenRow) string { return r.Ticker }},
	{"score", num(1, func(r contracts.ScreenRow) contracts.Float { return r.Score() })},

	// Technical
	{"close", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.Close })},
	{"high_52w", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.High52W })},
	{"low_52w", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.Low52W })},
	{"sma50", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.SMA50 })},
	{"sma200", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.SMA200 })},
	{"rsi14", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.RSI14 })},
	{"volume", num(0, func(r contracts.ScreenRow) contracts.Float { return r.Technical.Volume })},
	{"avg_volume_50", num(0, func(r contracts.ScreenRow) contracts.Float { return r.Technical.AvgVolume })},
	{"price_above_200d", flag(func(r contracts.ScreenRow) contracts.Bool { return r.Technical.PriceAbove200D })},
	{"sma50_above_200d", flag(func(r contracts.ScreenRow) contracts.Bool { return r.Technical.SMA50Above200D })},
	{"pct_below_52w_high", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.PctBelow52WHigh })},
	{"volume_multiple_vs_50d", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Technical.VolumeMultipleVs50D })},

	// Fundamentals
	{"market_cap", num(0, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().MarketCap })},
	{"pe", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().PE })},
	{"pb", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().PB })},
	{"roe", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().ROE })},
	{"roce", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().ROCE })},
	{"debt_to_equity", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().DebtToEquity })},
	{"interest_coverage", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().InterestCoverage })},
	{"revenue_cagr_3y", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().RevenueCAGR3Y })},
	{"eps_cagr_3y", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().EPSCAGR3Y })},
	{"ev_ebitda", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Fundamentals().EVEBITDA })},

	// Promoter
	{"promoter_latest_pct", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Promoter().LatestPercent })},
	{"promoter_prev_pct", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Promoter().PrevPercent })},
	{"promoter_change_qoq_pct_pts", num(2, func(r contracts.ScreenRow) contracts.Float { return r.Promoter().ChangeQoQPts })},
}

// Columns returns the CSV header in output order
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// Record renders one row in column order
func Record(row contracts.ScreenRow) []string {
	rec := make([]string, len(columns))
	for i, c := range columns {
		rec[i] = c.value(row)
	}
	return rec
}

// WriteCSV writes the header and one record per row
func WriteCSV(w io.Writer, rows []contracts.ScreenRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(Record(row)); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Ticker, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFiles writes the result rows to path and the run metadata next to
// it as <name>.meta.json. Parent directories are created.
func WriteFiles(path string, res *selection.Result) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(f, res.Rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close CSV file: %w", err)
	}

	meta, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run metadata: %w", err)
	}
	if err := os.WriteFile(MetadataPath(path), append(meta, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}

	return nil
}

// MetadataPath returns the metadata file written alongside a CSV
func MetadataPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".meta.json"
}
