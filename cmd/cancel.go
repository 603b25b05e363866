package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel open orders",
	Long: `Cancel open orders in bulk, optionally restricted to one ticker.

Use --dry-run to preview the orders without canceling.

Examples:
  # Preview what would be canceled
  go run . cancel --dry-run

  # Cancel everything
  go run . cancel

  # Cancel one ticker's orders
  go run . cancel --ticker CRZY`,
	Args: cobra.NoArgs,
	RunE: runCancel,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	cancelTickerFlag string
	cancelDryRunFlag bool
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cancelCmd)
	cancelCmd.Flags().StringVar(&cancelTickerFlag, "ticker", "", "Cancel only this ticker's orders")
	cancelCmd.Flags().BoolVar(&cancelDryRunFlag, "dry-run", false, "Preview orders without canceling")
}

func runCancel(cmd *cobra.Command, args []string) error {
	_, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := client.GetOpenOrders(ctx, types.OrderStatusOpen)
	if err != nil {
		return fmt.Errorf("get open orders: %w", err)
	}

	matching := make([]types.Order, 0, len(orders))
	for _, order := range orders {
		if cancelTickerFlag != "" && order.Ticker != cancelTickerFlag {
			continue
		}
		matching = append(matching, order)
	}

	if len(matching) == 0 {
		fmt.Println("No matching open orders.")
		return nil
	}

	fmt.Printf("\n%d open orders", len(matching))
	if cancelTickerFlag != "" {
		fmt.Printf(" on %s", cancelTickerFlag)
	}
	fmt.Println(":")
	for _, order := range matching {
		fmt.Printf("  #%-8d %-8s %-6s %-8s %10.2f x %d (%d filled)\n",
			order.OrderID, order.Ticker, order.Side, order.Type,
			order.Price, order.Quantity, order.QuantityFilled)
	}

	if cancelDryRunFlag {
		fmt.Println("\n[DRY RUN] No orders were canceled.")
		return nil
	}

	fmt.Println("\nCanceling...")
	result, err := client.CancelAllOrders(ctx, cancelTickerFlag)
	if err != nil {
		return fmt.Errorf("cancel orders: %w", err)
	}

	fmt.Printf("✅ Canceled %d orders\n", len(result.CancelledOrderIDs))

	return nil
}
