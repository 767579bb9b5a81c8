package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/recurring"
	"github.com/centsible/centsible/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTransactions handles GET /api/v1/transactions with optional
// start, end, and type query parameters. Malformed dates are rejected here;
// they never reach the detector.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := s.storage.GetTransactions(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// handleListRecurring handles GET /api/v1/recurring. Detection is recomputed
// on every request from the stored transactions and overrides. An override
// read failure degrades to automatic detection only; it does not fail the
// request.
func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start := time.Now().UTC().Add(-DefaultDetectionWindow)
	transactions, err := s.storage.GetTransactions(ctx, service.TransactionFilter{StartDate: &start})
	if err != nil {
		s.logger.Error("failed to load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	overrides, err := s.storage.GetRecurringOverrides(ctx)
	if err != nil {
		s.logger.Warn("failed to load recurring overrides, proceeding without", "error", err)
		overrides = nil
	}

	detected := recurring.Detect(transactions)
	result := recurring.ApplyOverrides(detected, overrides, transactions)
	if result == nil {
		result = []model.RecurringTransaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recurring": result,
		"count":     len(result),
	})
}

// handleUpsertOverride handles PUT /api/v1/recurring/overrides.
func (s *Server) handleUpsertOverride(w http.ResponseWriter, r *http.Request) {
	var override model.RecurringOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(override.MerchantKey) == "" {
		writeError(w, http.StatusBadRequest, "merchant_key is required")
		return
	}

	if err := s.storage.UpsertRecurringOverride(r.Context(), override); err != nil {
		s.logger.Error("failed to upsert override", "merchant_key", override.MerchantKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save override")
		return
	}

	writeJSON(w, http.StatusOK, override)
}

// handleDeleteOverride handles DELETE /api/v1/recurring/overrides/{merchantKey},
// reverting the merchant to automatic detection.
func (s *Server) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	merchantKey := r.PathValue("merchantKey")
	if strings.TrimSpace(merchantKey) == "" {
		writeError(w, http.StatusBadRequest, "merchant key is required")
		return
	}

	err := s.storage.DeleteRecurringOverride(r.Context(), merchantKey)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "override not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete override", "merchant_key", merchantKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete override")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTransactionFilter(r *http.Request) (service.TransactionFilter, error) {
	var filter service.TransactionFilter
	query := r.URL.Query()

	if startStr := query.Get("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return filter, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", startStr)
		}
		filter.StartDate = &start
	}
	if endStr := query.Get("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return filter, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", endStr)
		}
		filter.EndDate = &end
	}
	if typeStr := query.Get("type"); typeStr != "" {
		switch txnType := model.TransactionType(typeStr); txnType {
		case model.TypeIncome, model.TypeExpense, model.TypeTransfer:
			filter.Type = txnType
		default:
			return filter, fmt.Errorf("invalid type %q", typeStr)
		}
	}

	return filter, nil
}
