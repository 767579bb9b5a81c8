// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/centsible/centsible/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      model.TransactionType
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Recurring override operations
	UpsertRecurringOverride(ctx context.Context, override model.RecurringOverride) error
	DeleteRecurringOverride(ctx context.Context, merchantKey string) error
	GetRecurringOverrides(ctx context.Context) ([]model.RecurringOverride, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFetcher defines the contract for fetching transaction data from
// a banking provider. This interface allows for easy mocking in tests and
// swapping data sources.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
