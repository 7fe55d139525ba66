package helpers

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// SummaryLength is the number of characters kept in list previews
const SummaryLength = 200

// NameKey folds a display name into its case-insensitive comparison key.
// Inner whitespace is collapsed so "Chess  Club" and "chess club" collide.
func NameKey(name string) string {
	// Casers keep state and must not be shared between goroutines
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Truncate shortens s to max runes and appends "..." when anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
