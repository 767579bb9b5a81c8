package recurring

import (
	"strings"

	"github.com/centsible/centsible/internal/model"
)

// utilityKeywords mark categories whose bills fluctuate seasonally. Groups
// containing a utility transaction get a relaxed amount-variance tolerance,
// and unmatched utility transactions feed the fallback pass.
var utilityKeywords = []string{
	"utilities",
	"electric",
	"electricity",
	"gas",
	"natural gas",
	"water",
	"internet",
	"broadband",
	"cable",
	"sewer",
	"trash",
	"garbage",
	"telecom",
	"telephone",
}

// IsUtility reports whether a transaction's category or subcategory marks it
// as a utility bill. Matching is case-insensitive substring containment.
func IsUtility(txn model.Transaction) bool {
	category := strings.ToLower(txn.Category)
	subcategory := strings.ToLower(txn.Subcategory)

	for _, keyword := range utilityKeywords {
		if strings.Contains(category, keyword) || strings.Contains(subcategory, keyword) {
			return true
		}
	}
	return false
}
