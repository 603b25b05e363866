package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func testRecord() *DecisionRecord {
	return &DecisionRecord{
		ID:        "b7a1c9a0-0000-0000-0000-000000000001",
		TenderID:  42,
		Ticker:    "CRZY",
		Side:      types.SideBuy,
		Quantity:  10000,
		Price:     50.00,
		ILS:       1.0,
		SQS:       7,
		OBBS:      5,
		PLR:       10,
		Composite: 82.5,
		Accepted:  true,
		Reason:    "high confidence (score=82.5)",
		Strategy:  "patient",
		DecidedAt: time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestConsoleStorageStoreDecision(t *testing.T) {
	store := NewConsoleStorage(zap.NewNop())
	defer store.Close()

	if err := store.StoreDecision(context.Background(), testRecord()); err != nil {
		t.Errorf("StoreDecision: %v", err)
	}

	declined := testRecord()
	declined.Accepted = false
	declined.Strategy = ""
	declined.Reason = "score too low (35.0)"
	if err := store.StoreDecision(context.Background(), declined); err != nil {
		t.Errorf("StoreDecision declined: %v", err)
	}
}

func TestPostgresStorageStoreDecision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := &PostgresStorage{db: db, logger: zap.NewNop()}
	record := testRecord()

	mock.ExpectExec("INSERT INTO tender_decisions").
		WithArgs(
			record.ID, record.TenderID, record.Ticker, string(record.Side),
			record.Quantity, record.Price,
			record.ILS, record.SQS, record.OBBS, record.PLR, record.Composite,
			record.Accepted, record.Reason, record.Strategy, record.DecidedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.StoreDecision(context.Background(), record); err != nil {
		t.Errorf("StoreDecision: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStorageStoreDecisionError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := &PostgresStorage{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO tender_decisions").
		WillReturnError(errors.New("connection reset"))

	if err := store.StoreDecision(context.Background(), testRecord()); err == nil {
		t.Error("StoreDecision = nil error, want insert failure surfaced")
	}
}

func TestPostgresStorageClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	store := &PostgresStorage{db: db, logger: zap.NewNop()}
	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
