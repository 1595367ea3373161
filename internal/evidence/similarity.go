package evidence

import (
	"strings"
	"unicode"
)

// Similarity computes the Jaccard similarity of the normalized token sets
// of two strings, in [0, 1]. Token-set overlap is robust to reordering and
// punctuation, which is how the same sentence tends to differ when the same
// document is extracted twice.
func Similarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// tokenSet splits a string into a set of lower-cased alphanumeric tokens.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[tok] = true
	}
	return set
}

// normalize lower-cases and collapses whitespace for item comparison.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
