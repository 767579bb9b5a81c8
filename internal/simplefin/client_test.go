package simplefin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTransactions(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	posted := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).Unix()
	pendingPosted := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start-date"))
		assert.NotEmpty(t, r.URL.Query().Get("end-date"))

		payload := accountSet{
			Accounts: []account{{
				ID:   "acct-1",
				Name: "Checking",
				Transactions: []transaction{
					{ID: "tx-1", Posted: posted, Amount: "-15.99", Description: "NETFLIX.COM", Payee: "Netflix"},
					{ID: "tx-2", Posted: posted, Amount: "2500.00", Description: "ACME PAYROLL"},
					{ID: "tx-3", Posted: pendingPosted, Amount: "-4.50", Description: "COFFEE", Pending: true},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer srv.Close()

	client := newClientWithAccessURL(srv.URL)

	transactions, err := client.GetTransactions(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, transactions, 2, "pending transactions are skipped")

	netflix := transactions[0]
	assert.Equal(t, "acct-1_tx-1", netflix.ID)
	assert.Equal(t, "Netflix", netflix.Name, "payee preferred over description")
	assert.InDelta(t, 15.99, netflix.Amount, 0.001)
	assert.Equal(t, model.TypeExpense, netflix.Type)
	assert.Equal(t, "acct-1", netflix.AccountID)
	assert.NotEmpty(t, netflix.Hash)

	payroll := transactions[1]
	assert.Equal(t, "ACME PAYROLL", payroll.Name, "description used when payee missing")
	assert.Equal(t, model.TypeIncome, payroll.Type)
	assert.InDelta(t, 2500.00, payroll.Amount, 0.001)
}

func TestGetTransactionsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "access revoked", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newClientWithAccessURL(srv.URL)

	_, err := client.GetTransactions(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGetAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		payload := accountSet{Accounts: []account{{ID: "acct-1"}, {ID: "acct-2"}}}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer srv.Close()

	client := newClientWithAccessURL(srv.URL)

	accounts, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acct-1", "acct-2"}, accounts)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "negative debit", input: "-15.99", want: 15.99},
		{name: "positive credit", input: "2500.00", want: 2500.00},
		{name: "zero", input: "0", want: 0},
		{name: "garbage", input: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestClaimTokenRejectsBadTokens(t *testing.T) {
	_, err := claimToken("!!!not-base64!!!")
	require.Error(t, err)

	// Decodes but is not a URL.
	_, err = claimToken("bm90IGEgdXJs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid URL")
}
