package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

// FilterExtractor derives structured constraints from a query using the
// compiled vocabulary tables.
type FilterExtractor struct {
	vocab            *vocabulary.Compiled
	classifyCategory bool
}

// NewFilterExtractor creates an extractor. classifyCategory toggles the
// category filter; the other filters are always extracted.
func NewFilterExtractor(vocab *vocabulary.Compiled, classifyCategory bool) *FilterExtractor {
	return &FilterExtractor{
		vocab:            vocab,
		classifyCategory: classifyCategory,
	}
}

// Extract builds the filter set for one query. Keyword, flag and category
// filters read the normalized and cleaned token forms; numeric and feature
// filters read the raw text so decimals and unit suffixes survive.
func (e *FilterExtractor) Extract(raw, normalized, cleaned string) domain.FilterSet {
	filters := domain.NewFilterSet()
	texts := []string{cleaned, normalized}

	for _, f := range e.vocab.KeywordFilters {
		if _, taken := filters.Keywords[f.Key]; taken {
			continue
		}
		for _, kw := range f.Keywords {
			if containsAny(texts, kw.Norm) {
				filters.Keywords[f.Key] = kw.Value
				break
			}
		}
	}

	for _, flag := range e.vocab.Flags {
		for _, syn := range flag.Synonyms {
			if containsAny(texts, syn) {
				filters.Flags[flag.Name] = true
				break
			}
		}
	}

	if e.classifyCategory {
		for _, text := range texts {
			if category, ok := e.vocab.Classify(text); ok {
				filters.Category = category
				break
			}
		}
	}

	lowered := textutil.Lower(raw)
	filters.Voltage = extractRange(e.vocab.Voltage, lowered)
	filters.Current = extractRange(e.vocab.Current, lowered)

	for _, fp := range e.vocab.Features {
		if m := fp.Pattern.FindStringSubmatch(lowered); m != nil {
			filters.Features[fp.Key] = fp.Prefix + strings.ToLower(m[1])
		}
	}

	return filters
}

// extractRange applies the range phrases before the bare point value:
// "between X and Y", then upper bounds, then lower bounds, then "XV".
// Numbers without a unit never produce a range.
func extractRange(up vocabulary.UnitPatterns, text string) *domain.Range {
	if up.Between != nil {
		for _, m := range up.Between.FindAllStringSubmatch(text, -1) {
			if m[2] == "" && m[4] == "" {
				continue
			}
			lo, errLo := strconv.ParseFloat(m[1], 64)
			hi, errHi := strconv.ParseFloat(m[3], 64)
			if errLo != nil || errHi != nil {
				continue
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return &domain.Range{Min: lo, Max: hi}
		}
	}
	if v, ok := firstValue(up.Upper, text); ok {
		return &domain.Range{Min: 0, Max: v}
	}
	if v, ok := firstValue(up.Lower, text); ok {
		return &domain.Range{Min: v, Max: math.Inf(1)}
	}
	if v, ok := firstValue(up.Point, text); ok {
		return &domain.Range{Min: v, Max: v}
	}
	return nil
}

func firstValue(re *regexp.Regexp, text string) (float64, bool) {
	if re == nil {
		return 0, false
	}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func containsAny(texts []string, phrase string) bool {
	for _, t := range texts {
		if textutil.ContainsPhrase(t, phrase) {
			return true
		}
	}
	return false
}
