// Package textutil holds the text normalization shared by catalog loading and query analysis.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Chains carry state between calls, so each goroutine takes its own.
var accentStrippers = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

var (
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9 ]+`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	numberPattern     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Normalize lowercases s, replaces every character outside [a-z0-9 ] with a
// space, collapses whitespace runs and trims. Accented letters fold to their
// base letter first so "Résistance" keeps its word shape.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := accentStrippers.Get().(transform.Transformer)
	folded, _, err := transform.String(t, s)
	accentStrippers.Put(t)
	if err != nil {
		folded = s
	}
	out := strings.ToLower(folded)
	out = nonAlnumPattern.ReplaceAllString(out, " ")
	out = multiSpacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Lower lowercases s and collapses whitespace but keeps punctuation, so
// decimals and hyphenated keywords survive for pattern matching.
func Lower(s string) string {
	out := strings.ToLower(s)
	out = multiSpacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// CollapseSpace trims s and collapses internal whitespace, preserving case.
func CollapseSpace(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// ContainsPhrase reports whether phrase occurs in text on token boundaries.
// Both arguments must already be normalized.
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" || text == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// ParseNumbers returns every decimal number found in s, in order.
func ParseNumbers(s string) []float64 {
	matches := numberPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
