package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List open orders",
	Long: `Fetches open orders from the case API.

Examples:
  # Open orders
  go run . orders

  # Filled orders
  go run . orders --status TRANSACTED`,
	Args: cobra.NoArgs,
	RunE: runOrders,
}

//nolint:gochecknoglobals // Cobra boilerplate
var ordersStatusFlag string

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.Flags().StringVar(&ordersStatusFlag, "status", "OPEN", "Order status: OPEN, TRANSACTED, CANCELLED")
}

func runOrders(cmd *cobra.Command, args []string) error {
	_, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := client.GetOpenOrders(ctx, types.OrderStatus(ordersStatusFlag))
	if err != nil {
		return fmt.Errorf("get orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Printf("No %s orders found.\n", ordersStatusFlag)
		return nil
	}

	fmt.Println("\n========================================")
	fmt.Printf("Orders (%s)\n", ordersStatusFlag)
	fmt.Println("========================================")
	fmt.Printf("%-8s %-8s %-6s %-8s %-10s %-10s %-10s\n",
		"ID", "Ticker", "Side", "Type", "Price", "Quantity", "Filled")
	fmt.Println("----------------------------------------")

	for _, order := range orders {
		fmt.Printf("%-8d %-8s %-6s %-8s %-10.2f %-10d %-10d\n",
			order.OrderID, order.Ticker, order.Side, order.Type,
			order.Price, order.Quantity, order.QuantityFilled)
	}

	fmt.Printf("\nTotal: %d orders\n", len(orders))

	return nil
}
