package vocabulary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
)

const numberGroup = `(\d+(?:\.\d+)?)`

// Keyword pairs the configured spelling of a keyword with its normalized form.
type Keyword struct {
	Value string // as written in the vocabulary, used as the filter value
	Norm  string
}

// Rule is a compiled category rule
type Rule struct {
	Category string
	Keywords []string
}

// Filter is a compiled keyword filter
type Filter struct {
	Key      string
	Keywords []Keyword
}

// Flag is a compiled attribute flag with its normalized synonyms
type Flag struct {
	Name     string
	Synonyms []string
}

// Feature is a compiled feature pattern
type Feature struct {
	Key     string
	Pattern *regexp.Regexp
	Prefix  string
}

// UnitPatterns are the numeric extraction regexes for one unit family,
// consulted in field order: range phrases before the bare point value.
type UnitPatterns struct {
	Between *regexp.Regexp // groups: min, unit?, max, unit?
	Upper   *regexp.Regexp // groups: value, unit
	Lower   *regexp.Regexp // groups: value, unit
	Point   *regexp.Regexp // groups: value, unit
	Tagged  *regexp.Regexp // unit-tagged number inside a catalog field
}

// Compiled is the ready-to-use vocabulary. It is read-only after Compile.
type Compiled struct {
	DefaultCategory string
	EVCategory      string
	EVKeywords      []string
	Families        []Rule
	Categories      []Rule
	KeywordFilters  []Filter
	Flags           []Flag
	Features        []Feature
	Voltage         UnitPatterns
	Current         UnitPatterns
	Dictionary      []string

	stopWords map[string]struct{}
}

// Compile normalizes every keyword and builds the extraction regexes.
func (v *Vocabulary) Compile() (*Compiled, error) {
	c := &Compiled{
		DefaultCategory: v.DefaultCategory,
		EVCategory:      v.EVCategory,
		EVKeywords:      normalizeAll(v.EVKeywords),
		Families:        compileRules(v.ConnectorFamilies),
		Categories:      compileRules(v.Categories),
		stopWords:       make(map[string]struct{}, len(v.StopWords)),
	}

	for _, w := range v.StopWords {
		if n := textutil.Normalize(w); n != "" {
			c.stopWords[n] = struct{}{}
		}
	}

	for _, f := range v.KeywordFilters {
		if strings.TrimSpace(f.Key) == "" {
			return nil, fmt.Errorf("%w: keyword filter without key", domain.ErrInvalidVocabulary)
		}
		cf := Filter{Key: f.Key}
		for _, kw := range f.Keywords {
			if n := textutil.Normalize(kw); n != "" {
				cf.Keywords = append(cf.Keywords, Keyword{Value: strings.ToLower(strings.TrimSpace(kw)), Norm: n})
			}
		}
		c.KeywordFilters = append(c.KeywordFilters, cf)
	}

	flagNames := make([]string, 0, len(v.AttributeFlags))
	for name := range v.AttributeFlags {
		flagNames = append(flagNames, name)
	}
	sort.Strings(flagNames)
	for _, name := range flagNames {
		c.Flags = append(c.Flags, Flag{Name: name, Synonyms: normalizeAll(v.AttributeFlags[name])})
	}

	for _, fp := range v.FeaturePatterns {
		re, err := regexp.Compile(fp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: feature pattern %q: %v", domain.ErrInvalidVocabulary, fp.Key, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: feature pattern %q needs a capture group", domain.ErrInvalidVocabulary, fp.Key)
		}
		c.Features = append(c.Features, Feature{Key: fp.Key, Pattern: re, Prefix: fp.Prefix})
	}

	var err error
	if c.Voltage, err = compileUnit(v.Units.Voltage, v.RangePhrases); err != nil {
		return nil, fmt.Errorf("%w: voltage units: %v", domain.ErrInvalidVocabulary, err)
	}
	if c.Current, err = compileUnit(v.Units.Current, v.RangePhrases); err != nil {
		return nil, fmt.Errorf("%w: current units: %v", domain.ErrInvalidVocabulary, err)
	}

	c.Dictionary = buildDictionary(v, c)
	return c, nil
}

// IsStopWord reports whether the normalized token is a stop-word.
func (c *Compiled) IsStopWord(token string) bool {
	_, ok := c.stopWords[token]
	return ok
}

// Classify assigns a category to normalized text. Connector families are
// checked first, in order, then the generic table. ok is false when no
// keyword matched.
func (c *Compiled) Classify(text string) (category string, ok bool) {
	if text == "" {
		return "", false
	}
	for _, rules := range [][]Rule{c.Families, c.Categories} {
		for _, r := range rules {
			for _, kw := range r.Keywords {
				if textutil.ContainsPhrase(text, kw) {
					return r.Category, true
				}
			}
		}
	}
	return "", false
}

// ClassifyOrDefault is Classify with the default category as fallback.
func (c *Compiled) ClassifyOrDefault(text string) string {
	if cat, ok := c.Classify(text); ok {
		return cat
	}
	return c.DefaultCategory
}

// HasEVKeyword reports whether normalized text mentions the EV keyword.
func (c *Compiled) HasEVKeyword(text string) bool {
	for _, kw := range c.EVKeywords {
		if textutil.ContainsPhrase(text, kw) {
			return true
		}
	}
	return false
}

func compileRules(rules []CategoryRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Category == "" {
			continue
		}
		out = append(out, Rule{Category: r.Category, Keywords: normalizeAll(r.Keywords)})
	}
	return out
}

func compileUnit(units string, phrases RangePhrases) (UnitPatterns, error) {
	var up UnitPatterns
	if strings.TrimSpace(units) == "" {
		return up, fmt.Errorf("empty unit pattern")
	}
	unit := `(` + units + `)`

	var err error
	if len(phrases.Between) > 0 {
		expr := `\b(?:` + alternation(phrases.Between) + `)\s+` + numberGroup + `\s*` + unit + `?\s*(?:and|to|-)\s*` + numberGroup + `\s*` + unit + `?\b`
		if up.Between, err = regexp.Compile(expr); err != nil {
			return up, err
		}
	}
	if len(phrases.Upper) > 0 {
		expr := `\b(?:` + alternation(phrases.Upper) + `)\.?\s*` + numberGroup + `\s*` + unit + `\b`
		if up.Upper, err = regexp.Compile(expr); err != nil {
			return up, err
		}
	}
	if len(phrases.Lower) > 0 {
		expr := `\b(?:` + alternation(phrases.Lower) + `)\.?\s*` + numberGroup + `\s*` + unit + `\b`
		if up.Lower, err = regexp.Compile(expr); err != nil {
			return up, err
		}
	}
	if up.Point, err = regexp.Compile(`\b` + numberGroup + `\s*` + unit + `\b`); err != nil {
		return up, err
	}
	up.Tagged, err = regexp.Compile(`(?i)` + numberGroup + `\s*` + unit + `\b`)
	return up, err
}

// alternation escapes phrases and joins them longest-first so "up to" is
// preferred over "up".
func alternation(phrases []string) string {
	sorted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		sorted = append(sorted, strings.ReplaceAll(regexp.QuoteMeta(p), " ", `\s+`))
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return strings.Join(sorted, "|")
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := textutil.Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// buildDictionary collects the single-token words spelling correction may
// snap to, in a stable order.
func buildDictionary(v *Vocabulary, c *Compiled) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(word string) {
		if word == "" || strings.Contains(word, " ") {
			return
		}
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}

	for _, rules := range [][]Rule{c.Families, c.Categories} {
		for _, r := range rules {
			for _, kw := range r.Keywords {
				add(kw)
			}
		}
	}
	for _, f := range c.KeywordFilters {
		for _, kw := range f.Keywords {
			add(kw.Norm)
		}
	}
	for _, f := range c.Flags {
		for _, s := range f.Synonyms {
			add(s)
		}
	}
	for _, w := range normalizeAll(v.SpellingWords) {
		add(w)
	}
	return out
}
