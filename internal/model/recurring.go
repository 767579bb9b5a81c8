package model

import "time"

// Frequency classifies the cadence of a recurring charge.
type Frequency string

const (
	// FrequencyWeekly is a roughly 7-day cadence.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly is a roughly 14-day cadence.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly is a roughly 30-day cadence.
	FrequencyMonthly Frequency = "monthly"
)

// MonthlyMultiplier converts a per-charge amount to a monthly-equivalent
// amount. The weekly and biweekly factors approximate weeks and fortnights
// per month.
func (f Frequency) MonthlyMultiplier() float64 {
	switch f {
	case FrequencyWeekly:
		return 4.33
	case FrequencyBiweekly:
		return 2.17
	default:
		return 1.0
	}
}

// RecurringTransaction is a detected recurring charge. It is recomputed from
// transaction and override data on every request and never persisted; the
// merchant key is its only stable identity across calls.
type RecurringTransaction struct {
	LastDate          time.Time `json:"lastDate"`
	NextPredictedDate time.Time `json:"nextPredictedDate"`
	Merchant          string    `json:"merchant"`
	MerchantKey       string    `json:"merchantKey"`
	Frequency         Frequency `json:"frequency"`
	Category          string    `json:"category"`
	Subcategory       string    `json:"subcategory"`
	AverageAmount     float64   `json:"averageAmount"`
	MonthlyAmount     float64   `json:"monthlyAmount"`
	IntervalDays      int       `json:"intervalDays"`
	Occurrences       int       `json:"occurrences"`
}

// RecurringOverride is a user decision that force-includes or force-excludes
// a merchant from recurring detection. One override exists per merchant key;
// upserts are last-write-wins, and deleting the override reverts the merchant
// to automatic detection.
type RecurringOverride struct {
	MerchantKey string `json:"merchant_key"`
	IsRecurring bool   `json:"is_recurring"`
}
