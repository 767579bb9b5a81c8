package plaid

import (
	"log/slog"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "missing client ID",
			config: Config{
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid client ID is required",
		},
		{
			name: "missing secret",
			config: Config{
				ClientID:    "test-client-id",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid secret is required",
		},
		{
			name: "invalid environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "staging",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "sandbox or production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     model.TransactionType
		amount   float64
	}{
		{
			name:     "positive amount is an expense",
			amount:   15.99,
			category: "Entertainment",
			want:     model.TypeExpense,
		},
		{
			name:     "negative amount is income",
			amount:   -2500.00,
			category: "Payroll",
			want:     model.TypeIncome,
		},
		{
			name:     "transfer category wins over sign",
			amount:   500.00,
			category: "Transfer",
			want:     model.TypeTransfer,
		},
		{
			name:     "transfer match is case insensitive",
			amount:   -500.00,
			category: "Bank Transfers",
			want:     model.TypeTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveType(tt.amount, tt.category))
		})
	}
}

func TestMapPlaidTransaction(t *testing.T) {
	c := &Client{logger: slog.Default()}

	pt := plaid.Transaction{}
	pt.SetTransactionId("plaid-txn-1")
	pt.SetAccountId("acct-1")
	pt.SetName("NETFLIX.COM 1234567")
	pt.SetDate("2026-03-01")
	pt.SetAmount(15.99)
	pt.SetCategory([]string{"Service", "Subscription"})

	tx := c.mapPlaidTransaction(pt)

	assert.Equal(t, "plaid-txn-1", tx.ID)
	assert.Equal(t, "NETFLIX.COM 1234567", tx.Name)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, model.TypeExpense, tx.Type)
	assert.InDelta(t, 15.99, tx.Amount, 0.001)
	assert.Equal(t, "Service", tx.Category)
	assert.Equal(t, "Subscription", tx.Subcategory)
	assert.NotEmpty(t, tx.Hash)
}

func TestMapPlaidTransactionIncome(t *testing.T) {
	c := &Client{logger: slog.Default()}

	pt := plaid.Transaction{}
	pt.SetTransactionId("plaid-txn-2")
	pt.SetAccountId("acct-1")
	pt.SetName("ACME PAYROLL")
	pt.SetDate("2026-03-15")
	pt.SetAmount(-2500.00)

	tx := c.mapPlaidTransaction(pt)

	assert.Equal(t, model.TypeIncome, tx.Type)
	// Stored as non-negative magnitude.
	assert.InDelta(t, 2500.00, tx.Amount, 0.001)
}
