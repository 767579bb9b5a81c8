package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/centsible/centsible/internal/model"
)

const (
	// minOccurrences is the exact-match floor: three observations is the
	// minimum to establish a cadence.
	minOccurrences = 3

	// minFallbackOccurrences is the relaxed floor for the utility fallback,
	// which substitutes a distinct-months requirement for the third sample.
	minFallbackOccurrences = 2
	minFallbackMonths      = 2

	// baseVarianceTolerance caps per-transaction deviation from the group
	// mean. Utility groups get the relaxed tolerance instead.
	baseVarianceTolerance    = 0.20
	utilityVarianceTolerance = 0.45

	// minMeanAmount guards against degenerate zero-amount noise.
	minMeanAmount = 0.01

	// fallbackIntervalDays is assumed when cadence cannot be measured: the
	// utility fallback is monthly by construction, and force-included
	// merchants with too little history default to monthly billing.
	fallbackIntervalDays = 30
)

// Detect runs both detection passes over the supplied transactions and
// returns the combined recurring charges sorted by descending monthly
// amount. Income transactions never contribute; groups that fail any gate
// are silently dropped rather than reported.
func Detect(transactions []model.Transaction) []model.RecurringTransaction {
	detected, consumed := detectExact(transactions)
	detected = append(detected, detectUtilityFallback(transactions, consumed)...)
	sortByMonthlyAmount(detected)
	return detected
}

// detectExact is the first pass: group by exact normalized merchant key,
// validate amount consistency, and classify cadence from the gaps between
// charges. It returns the detections plus the set of transaction IDs they
// consumed, which the fallback pass must skip.
func detectExact(transactions []model.Transaction) ([]model.RecurringTransaction, map[string]bool) {
	groups, order := groupBy(transactions, func(normalized string) string {
		return normalized
	})

	var detected []model.RecurringTransaction
	consumed := make(map[string]bool)

	for _, key := range order {
		group := groups[key]
		if len(group) < minOccurrences {
			continue
		}
		sortByDate(group)

		mean := meanAmount(group)
		if mean < minMeanAmount {
			continue
		}

		tolerance := baseVarianceTolerance
		if containsUtility(group) {
			tolerance = utilityVarianceTolerance
		}
		if !withinVariance(group, mean, tolerance) {
			continue
		}

		frequency, interval, ok := classifyFrequency(dayGaps(group))
		if !ok {
			continue
		}

		detected = append(detected, buildRecurring(key, group, mean, frequency, interval))
		for _, txn := range group {
			consumed[txn.ID] = true
		}
	}

	return detected, consumed
}

// detectUtilityFallback is the second pass, covering seasonal utility bills
// the exact pass missed. It groups on the fuzzy 8-character prefix key to
// tolerate suffix drift in billing descriptors, requires only two charges in
// two distinct calendar months, applies the relaxed variance tolerance
// unconditionally, and assumes a monthly cadence rather than measuring one.
func detectUtilityFallback(transactions []model.Transaction, consumed map[string]bool) []model.RecurringTransaction {
	remaining := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if consumed[txn.ID] || !IsUtility(txn) {
			continue
		}
		remaining = append(remaining, txn)
	}

	groups, order := groupBy(remaining, PrefixKey)

	var detected []model.RecurringTransaction
	for _, key := range order {
		group := groups[key]
		if len(group) < minFallbackOccurrences {
			continue
		}
		sortByDate(group)

		if distinctMonths(group) < minFallbackMonths {
			continue
		}

		mean := meanAmount(group)
		if mean < minMeanAmount {
			continue
		}
		if !withinVariance(group, mean, utilityVarianceTolerance) {
			continue
		}

		detected = append(detected, buildRecurring(key, group, mean, model.FrequencyMonthly, fallbackIntervalDays))
	}

	return detected
}

// groupBy buckets non-income transactions by a key derived from the
// normalized description, dropping keys below the minimum length. Keys are
// returned in first-seen order so detection output is deterministic for a
// given input ordering.
func groupBy(transactions []model.Transaction, keyFn func(normalized string) string) (map[string][]model.Transaction, []string) {
	groups := make(map[string][]model.Transaction)
	var order []string

	for _, txn := range transactions {
		if txn.Type == model.TypeIncome {
			continue
		}
		normalized := Normalize(txn.Name)
		if len(normalized) < MinKeyLength {
			continue
		}
		key := keyFn(normalized)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], txn)
	}

	return groups, order
}

// buildRecurring derives the output record from a chronologically sorted
// group: the latest transaction supplies the display name and last date, the
// next charge is predicted one interval out, and category fields take the
// most frequent non-empty value.
func buildRecurring(key string, group []model.Transaction, mean float64, frequency model.Frequency, intervalDays int) model.RecurringTransaction {
	latest := group[len(group)-1]

	return model.RecurringTransaction{
		Merchant:          latest.Name,
		MerchantKey:       key,
		AverageAmount:     mean,
		Frequency:         frequency,
		IntervalDays:      intervalDays,
		LastDate:          latest.Date,
		NextPredictedDate: latest.Date.AddDate(0, 0, intervalDays),
		MonthlyAmount:     mean * frequency.MonthlyMultiplier(),
		Occurrences:       len(group),
		Category:          modeValue(group, func(t model.Transaction) string { return t.Category }),
		Subcategory:       modeValue(group, func(t model.Transaction) string { return t.Subcategory }),
	}
}

// modeValue returns the most frequent non-empty value; first-seen wins ties.
func modeValue(group []model.Transaction, value func(model.Transaction) string) string {
	counts := make(map[string]int)
	var order []string

	for _, txn := range group {
		v := value(txn)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

func meanAmount(group []model.Transaction) float64 {
	sum := 0.0
	for _, txn := range group {
		sum += math.Abs(txn.Amount)
	}
	return sum / float64(len(group))
}

// withinVariance reports whether every amount stays within the tolerance
// fraction of the group mean.
func withinVariance(group []model.Transaction, mean, tolerance float64) bool {
	for _, txn := range group {
		if math.Abs(math.Abs(txn.Amount)-mean) > mean*tolerance {
			return false
		}
	}
	return true
}

// dayGaps returns the day counts between each adjacent pair of a
// chronologically sorted group.
func dayGaps(group []model.Transaction) []int {
	if len(group) < 2 {
		return nil
	}
	gaps := make([]int, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		gaps = append(gaps, daysBetween(group[i-1].Date, group[i].Date))
	}
	return gaps
}

func daysBetween(earlier, later time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / 24))
}

// distinctMonths counts the unique YYYY-MM months a group spans.
func distinctMonths(group []model.Transaction) int {
	months := make(map[string]bool)
	for _, txn := range group {
		months[txn.Date.Format("2006-01")] = true
	}
	return len(months)
}

func containsUtility(group []model.Transaction) bool {
	for _, txn := range group {
		if IsUtility(txn) {
			return true
		}
	}
	return false
}

func sortByDate(group []model.Transaction) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Date.Before(group[j].Date)
	})
}

func sortByMonthlyAmount(detected []model.RecurringTransaction) {
	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].MonthlyAmount > detected[j].MonthlyAmount
	})
}
