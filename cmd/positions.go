package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Display open positions with risk flags",
	Long: `Fetches current positions and flags the ones the bot's health checks
would alert on: positions larger than the configured threshold, and
positions whose unrealized loss breaches the stop-loss level.

Examples:
  # Show all nonzero positions
  go run . positions

  # Include flat securities
  go run . positions --all`,
	Args: cobra.NoArgs,
	RunE: runPositions,
}

//nolint:gochecknoglobals // Cobra boilerplate
var positionsAllFlag bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.Flags().BoolVar(&positionsAllFlag, "all", false, "Include flat securities")
}

func runPositions(cmd *cobra.Command, args []string) error {
	cfg, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	securities, err := client.GetSecurities(ctx, "")
	if err != nil {
		return fmt.Errorf("get securities: %w", err)
	}

	var totalUnrealized, totalRealized float64
	var netExposure, grossExposure int
	shown := 0

	fmt.Println("\n========================================")
	fmt.Println("Positions")
	fmt.Println("========================================")

	for _, sec := range securities {
		totalUnrealized += sec.Unrealized
		totalRealized += sec.Realized
		netExposure += sec.Size
		grossExposure += absInt(sec.Size)

		if sec.Size == 0 && !positionsAllFlag {
			continue
		}
		shown++

		flag := ""
		if absInt(sec.Size) > cfg.LargePositionThreshold {
			flag = " ⚠️ LARGE"
		}
		if sec.Unrealized < cfg.StopLossThreshold {
			flag += " 🛑 STOP-LOSS"
		}

		fmt.Printf("%-8s size %8d  unrealized $%10.2f  realized $%10.2f%s\n",
			sec.Ticker, sec.Size, sec.Unrealized, sec.Realized, flag)
	}

	if shown == 0 {
		fmt.Println("All positions flat.")
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Net exposure:   %d / %d\n", netExposure, cfg.NetPositionLimit)
	fmt.Printf("Gross exposure: %d / %d\n", grossExposure, cfg.GrossPositionLimit)
	fmt.Printf("Unrealized P&L: $%.2f | Realized P&L: $%.2f\n", totalUnrealized, totalRealized)

	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
