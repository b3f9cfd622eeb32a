package usecase

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Ratio returns a 0-100 similarity between two strings based on Levenshtein
// distance normalized by the longer string. Either side empty scores 0.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	longest := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longest {
		longest = lb
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}

// TokenSortRatio compares two normalized strings after sorting their tokens,
// so word order does not matter.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
