package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreDecision pretty-prints a tender decision to console.
func (c *ConsoleStorage) StoreDecision(ctx context.Context, record *DecisionRecord) error {
	verdict := "❌ DECLINED"
	if record.Accepted {
		verdict = "✅ ACCEPTED"
	}

	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📋 TENDER DECISION: %s\n", verdict)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Tender:   #%d  %s %d %s @ %.2f\n",
		record.TenderID, record.Side, record.Quantity, record.Ticker, record.Price)
	fmt.Printf("Time:     %s\n", record.DecidedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("📊 SCORES\n")
	fmt.Printf("  Liquidity:    %.2f\n", record.ILS)
	fmt.Printf("  Spread:       %.1f\n", record.SQS)
	fmt.Printf("  Book Balance: %.1f\n", record.OBBS)
	fmt.Printf("  Position Risk:%.1f\n", record.PLR)
	fmt.Printf("  Composite:    %.1f\n", record.Composite)
	fmt.Printf("Reason:   %s\n", record.Reason)
	if record.Strategy != "" {
		fmt.Printf("Strategy: %s\n", record.Strategy)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
