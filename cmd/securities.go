package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var securitiesCmd = &cobra.Command{
	Use:   "securities",
	Short: "Display tradable securities with quotes and positions",
	Long: `Fetches every security in the case with its current quote, position,
and P&L.

Examples:
  # All securities
  go run . securities

  # A single ticker
  go run . securities --ticker CRZY`,
	Args: cobra.NoArgs,
	RunE: runSecurities,
}

//nolint:gochecknoglobals // Cobra boilerplate
var securitiesTickerFlag string

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(securitiesCmd)
	securitiesCmd.Flags().StringVar(&securitiesTickerFlag, "ticker", "", "Limit to a single ticker")
}

func runSecurities(cmd *cobra.Command, args []string) error {
	_, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	securities, err := client.GetSecurities(ctx, securitiesTickerFlag)
	if err != nil {
		return fmt.Errorf("get securities: %w", err)
	}

	if len(securities) == 0 {
		fmt.Println("No securities found.")
		return nil
	}

	fmt.Println("\n========================================")
	fmt.Println("Securities")
	fmt.Println("========================================")
	fmt.Printf("%-8s %-10s %-10s %-10s %-10s %-12s %-12s\n",
		"Ticker", "Bid", "Ask", "Last", "Position", "Unrealized", "Realized")
	fmt.Println("----------------------------------------")

	for _, sec := range securities {
		fmt.Printf("%-8s %-10.2f %-10.2f %-10.2f %-10d %-12.2f %-12.2f\n",
			sec.Ticker, sec.Bid, sec.Ask, sec.Last,
			sec.Size, sec.Unrealized, sec.Realized)
	}

	return nil
}
