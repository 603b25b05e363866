package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/internal/evaluation"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tendersCmd = &cobra.Command{
	Use:   "tenders",
	Short: "List outstanding tenders, optionally with a quick profitability check",
	Long: `Fetches the currently outstanding tenders from the case API.

With --check, each tender also gets a quick look at the order book: whether
the top of book covers the full quantity, and the estimated P&L of unwinding
the whole position at the current best opposing quote net of transaction
costs. This is a coarse preview, not the full scoring model the bot runs.

Examples:
  # List outstanding tenders
  go run . tenders

  # List with top-of-book coverage and estimated unwind P&L
  go run . tenders --check`,
	Args: cobra.NoArgs,
	RunE: runTenders,
}

//nolint:gochecknoglobals // Cobra boilerplate
var tendersCheckFlag bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tendersCmd)
	tendersCmd.Flags().BoolVar(&tendersCheckFlag, "check", false, "Run a quick profitability check per tender")
}

func runTenders(cmd *cobra.Command, args []string) error {
	cfg, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tenders, err := client.ListTenders(ctx)
	if err != nil {
		return fmt.Errorf("list tenders: %w", err)
	}

	if len(tenders) == 0 {
		fmt.Println("No outstanding tenders.")
		return nil
	}

	fmt.Println("\n========================================")
	fmt.Println("Outstanding Tenders")
	fmt.Println("========================================")
	fmt.Printf("%-6s %-8s %-6s %-10s %-10s %-8s\n",
		"ID", "Ticker", "Side", "Quantity", "Price", "Expires")
	fmt.Println("----------------------------------------")

	for i := range tenders {
		tender := tenders[i]
		fmt.Printf("%-6d %-8s %-6s %-10d %-10.2f %-8d\n",
			tender.TenderID, tender.Ticker, tender.Side,
			tender.Quantity, tender.Price, tender.Expires)

		if !tendersCheckFlag {
			continue
		}

		book, err := client.GetBook(ctx, tender.Ticker, cfg.BookFetchDepth)
		if err != nil {
			fmt.Printf("       book unavailable: %v\n", err)
			continue
		}
		printQuickCheck(&tender, book, cfg.TransactionCostPerShare)
	}

	return nil
}

func printQuickCheck(tender *types.Tender, book *types.BookSnapshot, costPerShare float64) {
	covered := evaluation.HasTopOfBookCoverage(tender, book)
	pnl := evaluation.EstimateUnwindPnL(tender, book, costPerShare)

	coverage := "partial"
	if covered {
		coverage = "full"
	}

	if math.IsInf(pnl, -1) {
		fmt.Printf("       top-of-book coverage: %s | unwind side empty\n", coverage)
		return
	}

	verdict := "❌"
	if pnl > 0 {
		verdict = "✅"
	}
	fmt.Printf("       top-of-book coverage: %s | est. unwind P&L: $%.2f %s\n",
		coverage, pnl, verdict)
}
