package storage

import (
	"context"
	"time"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// DecisionRecord is the audit trail entry for a single tender decision.
type DecisionRecord struct {
	ID       string
	TenderID int
	Ticker   string
	Side     types.Side
	Quantity int
	Price    float64

	ILS       float64
	SQS       float64
	OBBS      float64
	PLR       float64
	Composite float64

	Accepted bool
	Reason   string
	Strategy string

	DecidedAt time.Time
}

// Storage persists tender decision records.
type Storage interface {
	// StoreDecision stores one tender decision.
	StoreDecision(ctx context.Context, record *DecisionRecord) error

	// Close closes the storage connection.
	Close() error
}
