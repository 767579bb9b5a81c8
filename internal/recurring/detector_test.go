package recurring

import (
	"fmt"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var txnCounter int

func testTxn(name string, amount float64, date time.Time, txnType model.TransactionType, category, subcategory string) model.Transaction {
	txnCounter++
	return model.Transaction{
		ID:          fmt.Sprintf("txn-%d", txnCounter),
		Date:        date,
		Name:        name,
		Amount:      amount,
		Type:        txnType,
		Category:    category,
		Subcategory: subcategory,
	}
}

func expense(name string, amount float64, date time.Time) model.Transaction {
	return testTxn(name, amount, date, model.TypeExpense, "Entertainment", "Streaming")
}

func utilityExpense(name string, amount float64, date time.Time) model.Transaction {
	return testTxn(name, amount, date, model.TypeExpense, "Utilities", "Electric")
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectMonthlySubscription(t *testing.T) {
	transactions := []model.Transaction{
		expense("NETFLIX.COM", 15.99, day(2026, time.January, 1)),
		expense("NETFLIX.COM", 15.99, day(2026, time.February, 1)),
		expense("NETFLIX.COM", 15.99, day(2026, time.March, 1)),
	}

	detected := Detect(transactions)

	require.Len(t, detected, 1)
	rt := detected[0]
	assert.Equal(t, "netflixcom", rt.MerchantKey)
	assert.Equal(t, "NETFLIX.COM", rt.Merchant)
	assert.Equal(t, model.FrequencyMonthly, rt.Frequency)
	assert.Equal(t, 3, rt.Occurrences)
	// Gaps of 31 and 28 days average to 29.5, rounded to 30.
	assert.Equal(t, 30, rt.IntervalDays)
	assert.Equal(t, day(2026, time.March, 1), rt.LastDate)
	assert.Equal(t, day(2026, time.March, 31), rt.NextPredictedDate)
	assert.InDelta(t, 15.99, rt.AverageAmount, 0.001)
	assert.InDelta(t, 15.99, rt.MonthlyAmount, 0.001)
	assert.Equal(t, "Entertainment", rt.Category)
	assert.Equal(t, "Streaming", rt.Subcategory)
}

func TestDetectWeeklyMonthlyEquivalent(t *testing.T) {
	transactions := []model.Transaction{
		expense("BLUE APRON", 10.00, day(2026, time.January, 5)),
		expense("BLUE APRON", 10.00, day(2026, time.January, 12)),
		expense("BLUE APRON", 10.00, day(2026, time.January, 19)),
		expense("BLUE APRON", 10.00, day(2026, time.January, 26)),
	}

	detected := Detect(transactions)

	require.Len(t, detected, 1)
	assert.Equal(t, model.FrequencyWeekly, detected[0].Frequency)
	assert.Equal(t, 7, detected[0].IntervalDays)
	assert.InDelta(t, 43.30, detected[0].MonthlyAmount, 0.001)
}

func TestDetectMinimumOccurrenceFloor(t *testing.T) {
	transactions := []model.Transaction{
		expense("HULU", 12.99, day(2026, time.January, 15)),
		expense("HULU", 12.99, day(2026, time.February, 15)),
	}

	assert.Empty(t, Detect(transactions))
}

func TestDetectVarianceGate(t *testing.T) {
	dates := []time.Time{
		day(2026, time.January, 10),
		day(2026, time.February, 10),
		day(2026, time.March, 10),
		day(2026, time.April, 10),
	}
	amounts := []float64{100, 100, 100, 145}

	t.Run("non-utility group fails the 20 percent threshold", func(t *testing.T) {
		var transactions []model.Transaction
		for i, amount := range amounts {
			transactions = append(transactions, expense("PLANET FITNESS", amount, dates[i]))
		}

		assert.Empty(t, Detect(transactions))
	})

	t.Run("utility group passes under the relaxed threshold", func(t *testing.T) {
		var transactions []model.Transaction
		for i, amount := range amounts {
			transactions = append(transactions, utilityExpense("CITY POWER", amount, dates[i]))
		}

		detected := Detect(transactions)

		require.Len(t, detected, 1)
		assert.InDelta(t, 111.25, detected[0].AverageAmount, 0.001)
	})
}

func TestDetectUtilityFallback(t *testing.T) {
	t.Run("utility pair spanning two months is detected", func(t *testing.T) {
		transactions := []model.Transaction{
			utilityExpense("DUKE ENERGY", 100.00, day(2026, time.January, 8)),
			utilityExpense("DUKE ENERGY PMT", 140.00, day(2026, time.February, 9)),
		}

		detected := Detect(transactions)

		require.Len(t, detected, 1)
		rt := detected[0]
		assert.Equal(t, "duke ene", rt.MerchantKey)
		assert.Equal(t, model.FrequencyMonthly, rt.Frequency)
		assert.Equal(t, 30, rt.IntervalDays)
		assert.Equal(t, 2, rt.Occurrences)
		assert.InDelta(t, 120.00, rt.AverageAmount, 0.001)
		// Monthly frequency means no multiplier.
		assert.InDelta(t, 120.00, rt.MonthlyAmount, 0.001)
	})

	t.Run("non-utility pair in the same shape is not detected", func(t *testing.T) {
		transactions := []model.Transaction{
			expense("SOME SHOP", 100.00, day(2026, time.January, 8)),
			expense("SOME SHOP", 140.00, day(2026, time.February, 9)),
		}

		assert.Empty(t, Detect(transactions))
	})

	t.Run("utility pair within a single month is not detected", func(t *testing.T) {
		transactions := []model.Transaction{
			utilityExpense("DUKE ENERGY", 100.00, day(2026, time.January, 3)),
			utilityExpense("DUKE ENERGY", 110.00, day(2026, time.January, 28)),
		}

		assert.Empty(t, Detect(transactions))
	})

	t.Run("transactions consumed by the exact pass are not rescanned", func(t *testing.T) {
		transactions := []model.Transaction{
			utilityExpense("CITY WATER", 45.00, day(2026, time.January, 5)),
			utilityExpense("CITY WATER", 48.00, day(2026, time.February, 5)),
			utilityExpense("CITY WATER", 44.00, day(2026, time.March, 5)),
		}

		detected := Detect(transactions)

		// One detection from the exact pass, no duplicate from the fallback.
		require.Len(t, detected, 1)
		assert.Equal(t, "city water", detected[0].MerchantKey)
	})
}

func TestDetectIgnoresIncome(t *testing.T) {
	transactions := []model.Transaction{
		testTxn("ACME PAYROLL", 2500.00, day(2026, time.January, 1), model.TypeIncome, "Income", "Salary"),
		testTxn("ACME PAYROLL", 2500.00, day(2026, time.February, 1), model.TypeIncome, "Income", "Salary"),
		testTxn("ACME PAYROLL", 2500.00, day(2026, time.March, 1), model.TypeIncome, "Income", "Salary"),
	}

	assert.Empty(t, Detect(transactions))
}

func TestDetectDropsShortKeys(t *testing.T) {
	transactions := []model.Transaction{
		expense("AB", 9.99, day(2026, time.January, 1)),
		expense("AB", 9.99, day(2026, time.February, 1)),
		expense("AB", 9.99, day(2026, time.March, 1)),
	}

	assert.Empty(t, Detect(transactions))
}

func TestDetectDropsZeroAmountGroups(t *testing.T) {
	transactions := []model.Transaction{
		expense("FREE TRIAL", 0, day(2026, time.January, 1)),
		expense("FREE TRIAL", 0, day(2026, time.February, 1)),
		expense("FREE TRIAL", 0, day(2026, time.March, 1)),
	}

	assert.Empty(t, Detect(transactions))
}

func TestDetectSortsByMonthlyAmountDescending(t *testing.T) {
	var transactions []model.Transaction
	for month := time.January; month <= time.March; month++ {
		transactions = append(transactions,
			expense("NETFLIX.COM", 15.99, day(2026, month, 1)),
			expense("GYM MEMBERSHIP", 45.00, day(2026, month, 3)),
			expense("SPOTIFY", 9.99, day(2026, month, 5)),
		)
	}

	detected := Detect(transactions)

	require.Len(t, detected, 3)
	for i := 1; i < len(detected); i++ {
		assert.GreaterOrEqual(t, detected[i-1].MonthlyAmount, detected[i].MonthlyAmount)
	}
	assert.Equal(t, "gym membership", detected[0].MerchantKey)
}

func TestDetectIsIdempotent(t *testing.T) {
	transactions := []model.Transaction{
		expense("NETFLIX.COM", 15.99, day(2026, time.January, 1)),
		expense("NETFLIX.COM", 15.99, day(2026, time.February, 1)),
		expense("NETFLIX.COM", 15.99, day(2026, time.March, 1)),
		utilityExpense("DUKE ENERGY", 100.00, day(2026, time.January, 8)),
		utilityExpense("DUKE ENERGY PMT", 140.00, day(2026, time.February, 9)),
	}

	first := Detect(transactions)
	second := Detect(transactions)

	assert.Equal(t, first, second)
}

func TestDetectCategoryMode(t *testing.T) {
	transactions := []model.Transaction{
		testTxn("ACME STREAMING", 8.99, day(2026, time.January, 1), model.TypeExpense, "Entertainment", ""),
		testTxn("ACME STREAMING", 8.99, day(2026, time.February, 1), model.TypeExpense, "Subscriptions", "Video"),
		testTxn("ACME STREAMING", 8.99, day(2026, time.March, 1), model.TypeExpense, "Entertainment", ""),
	}

	detected := Detect(transactions)

	require.Len(t, detected, 1)
	assert.Equal(t, "Entertainment", detected[0].Category)
	// Empty values never count toward the mode.
	assert.Equal(t, "Video", detected[0].Subcategory)
}
