package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/nse-screener/internal/export"
	"github.com/wonny/nse-screener/internal/screenconfig"
	"github.com/wonny/nse-screener/internal/selection"
)

var (
	screenUniverse string
	screenLimit    int
	screenBuy      bool
	screenSell     bool
	screenOut      string
	screenTop      int
)

// screenCmd runs one screen and writes the result CSV
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a buy or sell screen over an index",
	Long: `Run the screen once:

  1. price history and technical indicators for every constituent
  2. technical prefilter (buy only)
  3. fundamentals and promoter holding for up to fundamentals_max_symbols
  4. hard filters (buy only) and scoring

Unknown values never exclude a symbol. The CSV holds every field, with
NA where a value could not be computed; run metadata is written next to
it as <name>.meta.json.`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenUniverse, "universe", "", "index: NIFTY50|NIFTY200|NIFTY500 (default from config)")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 0, "limit tickers for a quick run (0 = all)")
	screenCmd.Flags().BoolVar(&screenBuy, "buy", false, "buy-side screen (default)")
	screenCmd.Flags().BoolVar(&screenSell, "sell", false, "sell-side review: no filters, every enriched row")
	screenCmd.Flags().StringVar(&screenOut, "out", "results.csv", "output CSV path")
	screenCmd.Flags().IntVar(&screenTop, "top", 20, "rows to print (0 = all)")
	screenCmd.MarkFlagsMutuallyExclusive("buy", "sell")
}

// resolveMode maps the --buy/--sell flags to a mode; buy is the default
func resolveMode(buy, sell bool) selection.Mode {
	if sell && !buy {
		return selection.ModeSell
	}
	return selection.ModeBuy
}

// applyOverrides returns cfg with the universe flags applied
func applyOverrides(cfg screenconfig.Config, name string, limit int) screenconfig.Config {
	if name == "" {
		name = cfg.Universe.Name
	}
	if limit <= 0 {
		limit = cfg.Universe.Limit
	}
	return cfg.WithUniverse(strings.ToUpper(strings.TrimSpace(name)), limit)
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := applyOverrides(a.screen, screenUniverse, screenLimit)
	if err := a.validate(cfg); err != nil {
		return err
	}
	mode := resolveMode(screenBuy, screenSell)

	out := cmd.OutOrStdout()
	PrintRunHeader(out, RunMetadata{
		Title:    "NSE Screener",
		Universe: cfg.Universe.Name,
		Limit:    cfg.Universe.Limit,
		Mode:     mode,
		Config:   configFile,
	})

	res, err := a.runner(cfg, mode).Screen(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			PrintWarning(out, "Screen interrupted")
		}
		return err
	}

	outPath, err := filepath.Abs(screenOut)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := export.WriteFiles(outPath, res); err != nil {
		return err
	}

	PrintRunSummary(out, res)
	PrintSeparator(out)
	export.WriteTable(out, res.Rows, screenTop)
	PrintSeparator(out)
	PrintSuccess(out, fmt.Sprintf("Wrote %d rows to %s", len(res.Rows), outPath))

	return nil
}
