package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/internal/lifecycle"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Cancel all orders and market-close every position",
	Long: `Runs the same flatten-everything procedure the bot uses near session
end: cancel every open order, then close each nonzero position with market
orders split by the per-ticker order limit.

Use --dry-run to preview what would be closed.

Examples:
  # Preview the close
  go run . close --dry-run

  # Flatten everything now
  go run . close`,
	Args: cobra.NoArgs,
	RunE: runClose,
}

//nolint:gochecknoglobals // Cobra boilerplate
var closeDryRunFlag bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(closeCmd)
	closeCmd.Flags().BoolVar(&closeDryRunFlag, "dry-run", false, "Preview positions without closing")
}

type cliClock struct{}

func (cliClock) Now() time.Time { return time.Now() }

func runClose(cmd *cobra.Command, args []string) error {
	cfg, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	securities, err := client.GetSecurities(ctx, "")
	if err != nil {
		return fmt.Errorf("get securities: %w", err)
	}

	open := 0
	for _, sec := range securities {
		if sec.Size == 0 {
			continue
		}
		open++
		side := types.SideSell
		if sec.Size < 0 {
			side = types.SideBuy
		}
		fmt.Printf("%-8s size %8d -> %s %d\n", sec.Ticker, sec.Size, side, absInt(sec.Size))
	}

	if open == 0 {
		fmt.Println("All positions already flat.")
		return nil
	}

	if closeDryRunFlag {
		fmt.Println("\n[DRY RUN] No orders were placed.")
		return nil
	}

	manager := lifecycle.New(lifecycle.Config{
		Client:                 client,
		Clock:                  cliClock{},
		Logger:                 logger,
		DefaultOrderLimit:      cfg.DefaultOrderLimit,
		OrderLimits:            cfg.OrderLimits,
		TickSize:               cfg.TickSize,
		CaseDuration:           cfg.CaseDuration,
		NetPositionLimit:       cfg.NetPositionLimit,
		PatienceUrgent:         cfg.PatienceUrgent,
		PatienceModerate:       cfg.PatienceModerate,
		PatienceRelaxed:        cfg.PatienceRelaxed,
		Tier3TimeFloor:         cfg.Tier3TimeFloor,
		BookFetchDepth:         cfg.BookFetchDepth,
		StopLossThreshold:      cfg.StopLossThreshold,
		LargePositionThreshold: cfg.LargePositionThreshold,
	})

	fmt.Println("\nFlattening all positions...")
	err = manager.EmergencyLiquidation(ctx)
	if err != nil {
		return fmt.Errorf("liquidation: %w", err)
	}

	fmt.Println("✅ Done. Check `positions` to confirm everything is flat.")

	return nil
}
