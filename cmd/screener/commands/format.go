package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/nse-screener/internal/selection"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// All commands print headers and summaries through these helpers
// ═══════════════════════════════════════════════════════════

const ruleWidth = 59

// RunMetadata describes a screen before it starts
type RunMetadata struct {
	Title    string
	Universe string
	Limit    int
	Mode     selection.Mode
	Config   string
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(w io.Writer, meta RunMetadata) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", meta.Title)
	PrintSeparator(w)
	fmt.Fprintf(w, "  Universe  : %s\n", meta.Universe)
	if meta.Limit > 0 {
		fmt.Fprintf(w, "  Limit     : %d\n", meta.Limit)
	}
	fmt.Fprintf(w, "  Mode      : %s\n", meta.Mode)
	if meta.Config != "" {
		fmt.Fprintf(w, "  Config    : %s\n", meta.Config)
	}
	PrintSeparator(w)
}

// PrintRunSummary prints stage counts of a completed run
func PrintRunSummary(w io.Writer, res *selection.Result) {
	s := res.Stats
	PrintKeyValue(w, "Run ID", res.RunID.String(), 14)
	PrintKeyValue(w, "Config hash", shortHash(res.ConfigHash), 14)
	PrintKeyValue(w, "Universe", fmt.Sprintf("%d (%d without prices)", s.Universe, s.PriceFailures), 14)
	PrintKeyValue(w, "Prefilter", fmt.Sprintf("%d passed", s.Prefilter.Passed), 14)
	PrintKeyValue(w, "Enriched", fmt.Sprintf("%d (%d fundamentals, %d promoter unavailable)",
		s.Capped, s.FundamentalFailures, s.PromoterFailures), 14)
	PrintKeyValue(w, "Output", fmt.Sprintf("%d rows", s.Output), 14)
	PrintKeyValue(w, "Duration", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String(), 14)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("═", ruleWidth))
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintNumberedList prints a numbered list
func PrintNumberedList(w io.Writer, items []string) {
	for i, item := range items {
		fmt.Fprintf(w, "   %d. %s\n", i+1, item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
