package main

import (
	"context"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/plaid"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTransactionsByAccount(t *testing.T) {
	transactions := []model.Transaction{
		{ID: "t1", AccountID: "checking"},
		{ID: "t2", AccountID: "savings"},
		{ID: "t3", AccountID: "checking"},
	}

	filtered := filterTransactionsByAccount(transactions, []string{"checking"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "t1", filtered[0].ID)
	assert.Equal(t, "t3", filtered[1].ID)

	assert.Empty(t, filterTransactionsByAccount(transactions, []string{"brokerage"}))
}

func TestParseDateRange(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("explicit range", func(t *testing.T) {
		viper.Set("sync.start_date", "2026-01-01")
		viper.Set("sync.end_date", "2026-01-31")

		start, end, err := parseDateRange()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("invalid start date", func(t *testing.T) {
		viper.Set("sync.start_date", "01/01/2026")
		viper.Set("sync.end_date", "")

		_, _, err := parseDateRange()
		require.Error(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		viper.Set("sync.start_date", "2026-02-01")
		viper.Set("sync.end_date", "2026-01-01")

		_, _, err := parseDateRange()
		require.Error(t, err)
	})
}

func TestSyncPipelineWithMockFetcher(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	mock := plaid.NewMockClient()
	mock.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		txns := []model.Transaction{
			{ID: "p1", Date: start.AddDate(0, 0, 14), Name: "NETFLIX.COM", Amount: 15.99, Type: model.TypeExpense, AccountID: "checking"},
			{ID: "p2", Date: start.AddDate(0, 1, 14), Name: "NETFLIX.COM", Amount: 15.99, Type: model.TypeExpense, AccountID: "checking"},
		}
		for i := range txns {
			txns[i].Hash = txns[i].GenerateHash()
		}
		return txns, nil
	}

	var fetcher service.TransactionFetcher = mock

	transactions, err := fetcher.GetTransactions(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	require.Len(t, mock.GetTransactionsCalls, 1)
	assert.Equal(t, start, mock.GetTransactionsCalls[0].StartDate)

	require.NoError(t, store.SaveTransactions(ctx, transactions))

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
