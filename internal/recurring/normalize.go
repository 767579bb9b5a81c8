// Package recurring detects recurring bills and subscriptions from raw
// transaction history. Detection is a pure computation over in-memory data:
// it performs no I/O, holds no state between calls, and degrades by exclusion
// rather than by returning errors.
package recurring

import (
	"regexp"
	"strings"
)

const (
	// MinKeyLength is the shortest normalized merchant key that participates
	// in grouping. Anything shorter is too ambiguous to match reliably.
	MinKeyLength = 3

	// PrefixLength bounds the fuzzy key used by the utility fallback pass.
	PrefixLength = 8
)

var (
	// Bank feeds commonly use these characters as field separators.
	separatorReplacer = strings.NewReplacer("*", " ", "#", " ", "@", " ")

	// Standalone digit runs of 5+ characters are reference or confirmation
	// numbers that would make identical merchants look distinct.
	referenceNumberRegex = regexp.MustCompile(`\b[0-9]{5,}\b`)

	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9 ]`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw transaction description into a comparable
// merchant key: lowercased, separators and reference numbers stripped,
// remaining punctuation removed, whitespace collapsed.
func Normalize(description string) string {
	s := strings.ToLower(description)
	s = separatorReplacer.Replace(s)
	s = referenceNumberRegex.ReplaceAllString(s, " ")
	s = nonAlphanumericRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PrefixKey returns the first PrefixLength characters of a normalized key,
// right-trimmed. The utility fallback pass groups on this key so that suffix
// drift in billing descriptors ("duke energy" vs "duke energy pmt") still
// lands both in one group.
func PrefixKey(normalized string) string {
	if len(normalized) > PrefixLength {
		normalized = normalized[:PrefixLength]
	}
	return strings.TrimRight(normalized, " ")
}
