package storage

import (
	"context"
	"fmt"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
)

// UpsertRecurringOverride creates or replaces the override for a merchant
// key. One override exists per key; last write wins.
func (s *SQLiteStorage) UpsertRecurringOverride(ctx context.Context, override model.RecurringOverride) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(&override); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_overrides (merchant_key, is_recurring, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(merchant_key) DO UPDATE SET
			is_recurring = excluded.is_recurring,
			updated_at = CURRENT_TIMESTAMP
	`, override.MerchantKey, override.IsRecurring)
	if err != nil {
		return fmt.Errorf("failed to upsert recurring override: %w", err)
	}

	return nil
}

// DeleteRecurringOverride removes the override for a merchant key, reverting
// the merchant to automatic detection.
func (s *SQLiteStorage) DeleteRecurringOverride(ctx context.Context, merchantKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM recurring_overrides WHERE merchant_key = ?", merchantKey)
	if err != nil {
		return fmt.Errorf("failed to delete recurring override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("override %s: %w", merchantKey, common.ErrNotFound)
	}

	return nil
}

// GetRecurringOverrides returns all recurring overrides.
func (s *SQLiteStorage) GetRecurringOverrides(ctx context.Context) ([]model.RecurringOverride, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant_key, is_recurring
		FROM recurring_overrides
		ORDER BY merchant_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overrides []model.RecurringOverride
	for rows.Next() {
		var override model.RecurringOverride
		if err := rows.Scan(&override.MerchantKey, &override.IsRecurring); err != nil {
			return nil, fmt.Errorf("failed to scan recurring override: %w", err)
		}
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring overrides: %w", err)
	}

	return overrides, nil
}
