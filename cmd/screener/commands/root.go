package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "NSE equity screener",
	Long: `NSE equity screener

Screens an NSE index (NIFTY50, NIFTY200, NIFTY500) with a technical
prefilter, fundamentals and promoter-holding enrichment, hard filters
and a weighted score.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen --universe NIFTY50 --out results.csv
  go run ./cmd/screener screen --config config/screener.yaml --sell
  go run ./cmd/screener universe NIFTY200 --limit 20
  go run ./cmd/screener schedule --cron "30 16 * * 1-5" --out-dir results/`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "screen config YAML (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
