package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, service.Storage) {
	t.Helper()
	store := testutil.SetupTestDB(t)
	return New("127.0.0.1:0", store), store
}

func seedSubscription(t *testing.T, store service.Storage, name string, amount float64) {
	t.Helper()
	now := time.Now().UTC().Truncate(24 * time.Hour)

	var transactions []model.Transaction
	for i := 1; i <= 3; i++ {
		transactions = append(transactions, model.Transaction{
			ID:       fmt.Sprintf("%s-%d", name, i),
			Date:     now.AddDate(0, -i, 0),
			Name:     name,
			Amount:   amount,
			Type:     model.TypeExpense,
			Category: "Entertainment",
		})
	}
	require.NoError(t, store.SaveTransactions(context.Background(), transactions))
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleListTransactions(t *testing.T) {
	srv, store := newTestServer(t)
	seedSubscription(t, store, "NETFLIX.COM", 15.99)

	t.Run("lists stored transactions", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Transactions []model.Transaction `json:"transactions"`
			Count        int                 `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body.Count)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?start=03-01-2026", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?type=debit", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleListRecurring(t *testing.T) {
	srv, store := newTestServer(t)
	seedSubscription(t, store, "NETFLIX.COM", 15.99)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recurring", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Recurring []model.RecurringTransaction `json:"recurring"`
		Count     int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "netflixcom", body.Recurring[0].MerchantKey)
	assert.Equal(t, model.FrequencyMonthly, body.Recurring[0].Frequency)
}

func TestHandleOverrideLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	seedSubscription(t, store, "NETFLIX.COM", 15.99)

	listRecurring := func() int {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recurring", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Count
	}

	require.Equal(t, 1, listRecurring())

	// Dismiss the detected merchant.
	payload, _ := json.Marshal(model.RecurringOverride{MerchantKey: "netflixcom", IsRecurring: false})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/recurring/overrides", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 0, listRecurring())

	// Revert to automatic detection.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/recurring/overrides/netflixcom", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1, listRecurring())
}

func TestHandleUpsertOverrideValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("invalid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/recurring/overrides", bytes.NewReader([]byte("{"))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing merchant key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/recurring/overrides", bytes.NewReader([]byte(`{"is_recurring":true}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDeleteOverrideNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/recurring/overrides/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// failingOverrideStorage simulates an override store that has not been
// provisioned yet.
type failingOverrideStorage struct {
	service.Storage
}

func (f *failingOverrideStorage) GetRecurringOverrides(_ context.Context) ([]model.RecurringOverride, error) {
	return nil, errors.New("no such table: recurring_overrides")
}

func TestHandleListRecurringDegradesWithoutOverrideStore(t *testing.T) {
	store := testutil.SetupTestDB(t)
	seedSubscription(t, store, "NETFLIX.COM", 15.99)
	srv := New("127.0.0.1:0", &failingOverrideStorage{Storage: store})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recurring", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}
