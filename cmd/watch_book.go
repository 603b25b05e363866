package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchBookCmd = &cobra.Command{
	Use:   "watch-book",
	Short: "Watch the live order book for a ticker",
	Long: `Polls the order book for a ticker and redraws it at a fixed interval
until interrupted with Ctrl-C.

Examples:
  # Watch CRZY at the default interval
  go run . watch-book --ticker CRZY

  # Faster refresh, deeper book
  go run . watch-book --ticker TAME --interval 500ms --depth 15`,
	Args: cobra.NoArgs,
	RunE: runWatchBook,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	watchBookTickerFlag   string
	watchBookIntervalFlag time.Duration
	watchBookDepthFlag    int
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchBookCmd)
	watchBookCmd.Flags().StringVar(&watchBookTickerFlag, "ticker", "", "Ticker to watch (required)")
	watchBookCmd.Flags().DurationVar(&watchBookIntervalFlag, "interval", 1*time.Second, "Refresh interval")
	watchBookCmd.Flags().IntVar(&watchBookDepthFlag, "depth", 10, "Book levels per side")
	_ = watchBookCmd.MarkFlagRequired("ticker")
}

func runWatchBook(cmd *cobra.Command, args []string) error {
	_, client, logger, err := cliSetup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Watching %s every %s (Ctrl-C to stop)\n", watchBookTickerFlag, watchBookIntervalFlag)

	ticker := time.NewTicker(watchBookIntervalFlag)
	defer ticker.Stop()

	for {
		book, err := client.GetBook(ctx, watchBookTickerFlag, watchBookDepthFlag)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("book fetch failed: %v\n", err)
		} else {
			printBook(watchBookTickerFlag, book)
		}

		select {
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		case <-ticker.C:
		}
	}
}

func printBook(ticker string, book *types.BookSnapshot) {
	fmt.Println("\n========================================")
	fmt.Printf("%s  %s\n", ticker, time.Now().Format("15:04:05"))
	fmt.Println("========================================")
	fmt.Printf("%-12s %-12s | %-12s %-12s\n", "Bid Qty", "Bid", "Ask", "Ask Qty")
	fmt.Println("----------------------------------------")

	levels := len(book.Bids)
	if len(book.Asks) > levels {
		levels = len(book.Asks)
	}

	for i := 0; i < levels; i++ {
		bidQty, bidPrice := "", ""
		if i < len(book.Bids) {
			bidQty = fmt.Sprintf("%d", book.Bids[i].Remaining())
			bidPrice = fmt.Sprintf("%.2f", book.Bids[i].Price)
		}
		askQty, askPrice := "", ""
		if i < len(book.Asks) {
			askQty = fmt.Sprintf("%d", book.Asks[i].Remaining())
			askPrice = fmt.Sprintf("%.2f", book.Asks[i].Price)
		}
		fmt.Printf("%-12s %-12s | %-12s %-12s\n", bidQty, bidPrice, askPrice, askQty)
	}

	if bid, ok := book.BestBid(); ok {
		if ask, okAsk := book.BestAsk(); okAsk {
			fmt.Printf("\nSpread: %.2f (%.2f / %.2f)\n", ask.Price-bid.Price, bid.Price, ask.Price)
		}
	}
}
