package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/nse-screener/internal/contracts"
)

var (
	tableColumns = []string{"#", "TICKER", "SCORE", "CLOSE", "RSI", "PE", "ROE", "PROM Δ", "MCAP (Cr)"}
	tableWidths  = []int{4, 16, 6, 10, 6, 7, 7, 7, 12}
)

// crore is 10^7 rupees
const crore = 1e7

// WriteTable prints the first n rows as a fixed-width table. n <= 0 prints all.
func WriteTable(w io.Writer, rows []contracts.ScreenRow, n int) {
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}

	printRow(w, tableColumns)

	total := 0
	for i, width := range tableWidths {
		total += width
		if i < len(tableWidths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for i, row := range rows[:n] {
		f := row.Fundamentals()
		mcap := NA
		if v, ok := f.MarketCap.Get(); ok {
			mcap = fmt.Sprintf("%.0f", v/crore)
		}

		printRow(w, []string{
			fmt.Sprintf("%d", i+1),
			row.Ticker,
			row.Score().Format(1, NA),
			row.Technical.Close.Format(2, NA),
			row.Technical.RSI14.Format(1, NA),
			f.PE.Format(1, NA),
			f.ROE.Format(1, NA),
			row.Promoter().ChangeQoQPts.Format(2, NA),
			mcap,
		})
	}

	if n < len(rows) {
		fmt.Fprintf(w, "... %d more\n", len(rows)-n)
	}
}

func printRow(w io.Writer, values []string) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", tableWidths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}
