package recurring

import (
	"github.com/centsible/centsible/internal/model"
)

// ApplyOverrides merges user force-include and force-exclude decisions into
// the detected list. Force-excludes remove a detection no matter how strong
// the automatic signal was; force-includes synthesize an entry for merchants
// the detector missed. The input slice is not mutated; a new sorted slice is
// returned.
func ApplyOverrides(detected []model.RecurringTransaction, overrides []model.RecurringOverride, transactions []model.Transaction) []model.RecurringTransaction {
	excluded := make(map[string]bool)
	for _, override := range overrides {
		if !override.IsRecurring {
			excluded[override.MerchantKey] = true
		}
	}

	result := make([]model.RecurringTransaction, 0, len(detected))
	present := make(map[string]bool)
	for _, rt := range detected {
		if excluded[rt.MerchantKey] {
			continue
		}
		result = append(result, rt)
		present[rt.MerchantKey] = true
	}

	for _, override := range overrides {
		if !override.IsRecurring || present[override.MerchantKey] {
			continue
		}
		synthesized, ok := synthesize(override.MerchantKey, transactions)
		if !ok {
			continue
		}
		result = append(result, synthesized)
		present[override.MerchantKey] = true
	}

	sortByMonthlyAmount(result)
	return result
}

// synthesize builds a RecurringTransaction for a force-included merchant from
// every non-income transaction whose normalized description equals the key.
// A manual flag overrides automatic qualification, so no variance or
// occurrence gates apply. Cadence is inferred with the usual gap classifier
// when the history supports it; otherwise monthly billing every 30 days is
// assumed. Returns false when no transactions match the key.
func synthesize(merchantKey string, transactions []model.Transaction) (model.RecurringTransaction, bool) {
	var group []model.Transaction
	for _, txn := range transactions {
		if txn.Type == model.TypeIncome {
			continue
		}
		if Normalize(txn.Name) == merchantKey {
			group = append(group, txn)
		}
	}
	if len(group) == 0 {
		return model.RecurringTransaction{}, false
	}

	sortByDate(group)

	frequency := model.FrequencyMonthly
	intervalDays := fallbackIntervalDays
	if f, interval, ok := classifyFrequency(dayGaps(group)); ok {
		frequency = f
		intervalDays = interval
	}

	return buildRecurring(merchantKey, group, meanAmount(group), frequency, intervalDays), true
}
