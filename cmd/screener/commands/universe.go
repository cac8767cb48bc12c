package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var universeLimit int

// universeCmd lists the tickers of an index
var universeCmd = &cobra.Command{
	Use:   "universe [index]",
	Short: "List index constituents as Yahoo tickers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.Flags().IntVar(&universeLimit, "limit", 0, "limit tickers (0 = all)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	index := a.screen.Universe.Name
	if len(args) == 1 {
		index = strings.ToUpper(args[0])
	}

	symbols, err := a.universeProvider(a.screen).Constituents(ctx, index, universeLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintNumberedList(out, symbols)
	PrintSeparator(out)
	fmt.Fprintf(out, "%s: %d tickers\n", index, len(symbols))
	return nil
}
