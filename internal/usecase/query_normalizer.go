package usecase

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

// NormalizerConfig toggles the optional query cleaning stages
type NormalizerConfig struct {
	RemoveStopWords  bool
	FoldInflections  bool
	CorrectSpelling  bool
	SpellingCutoff   float64 // 0-1, a token is replaced only at or above this similarity
	MinCorrectLength int     // shorter tokens are never corrected or folded
}

// QueryNormalizer turns raw user text into the forms the matchers compare against.
type QueryNormalizer struct {
	vocab  *vocabulary.Compiled
	config NormalizerConfig
	words  map[string]struct{}
	stems  map[string][]string // stem -> dictionary words with that stem
	logger zerolog.Logger
}

// NewQueryNormalizer creates a normalizer over the given vocabulary
func NewQueryNormalizer(vocab *vocabulary.Compiled, config NormalizerConfig, logger zerolog.Logger) *QueryNormalizer {
	if config.SpellingCutoff <= 0 || config.SpellingCutoff > 1 {
		config.SpellingCutoff = 0.8
	}
	if config.MinCorrectLength <= 0 {
		config.MinCorrectLength = 4
	}

	words := make(map[string]struct{}, len(vocab.Dictionary))
	stems := make(map[string][]string, len(vocab.Dictionary))
	for _, word := range vocab.Dictionary {
		words[word] = struct{}{}
		stem := english.Stem(word, false)
		stems[stem] = append(stems[stem], word)
	}

	return &QueryNormalizer{
		vocab:  vocab,
		config: config,
		words:  words,
		stems:  stems,
		logger: logger,
	}
}

// Normalize is the base normalization: lowercase, non [a-z0-9 ] characters
// replaced by spaces, whitespace collapsed and trimmed.
func (n *QueryNormalizer) Normalize(raw string) string {
	return textutil.Normalize(raw)
}

// Clean applies the enabled token passes to already normalized text.
func (n *QueryNormalizer) Clean(normalized string) string {
	cleaned := normalized
	if n.config.RemoveStopWords {
		cleaned = n.RemoveStopWords(cleaned)
	}
	if n.config.FoldInflections {
		cleaned = n.FoldInflections(cleaned)
	}
	if n.config.CorrectSpelling {
		cleaned = n.CorrectSpelling(cleaned)
	}
	if cleaned != normalized {
		n.logger.Debug().Str("normalized", normalized).Str("cleaned", cleaned).Msg("query cleaned")
	}
	return cleaned
}

// RemoveStopWords drops vocabulary stop-words from normalized text
func (n *QueryNormalizer) RemoveStopWords(normalized string) string {
	words := strings.Fields(normalized)
	kept := words[:0]
	for _, word := range words {
		if !n.vocab.IsStopWord(word) {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// FoldInflections replaces an inflected token ("switches", "mounting") with
// the dictionary word it inflects. The token must share the word's stem and
// be the word plus an inflectional suffix; anything else is left alone.
func (n *QueryNormalizer) FoldInflections(normalized string) string {
	words := strings.Fields(normalized)
	for i, word := range words {
		words[i] = n.foldToken(word)
	}
	return strings.Join(words, " ")
}

func (n *QueryNormalizer) foldToken(token string) string {
	if len(token) < n.config.MinCorrectLength || hasDigit(token) {
		return token
	}
	if _, ok := n.words[token]; ok {
		return token
	}
	for _, word := range n.stems[english.Stem(token, false)] {
		if isInflectionOf(token, word) {
			return word
		}
	}
	return token
}

var inflectionSuffixes = map[string]bool{"s": true, "es": true, "ing": true, "ings": true, "ed": true}

// isInflectionOf reports whether token is word plus an inflectional suffix,
// allowing a doubled final consonant ("plugged").
func isInflectionOf(token, word string) bool {
	if len(token) <= len(word) || !strings.HasPrefix(token, word) {
		return false
	}
	suffix := token[len(word):]
	if inflectionSuffixes[suffix] {
		return true
	}
	return suffix[0] == word[len(word)-1] && inflectionSuffixes[suffix[1:]]
}

// CorrectSpelling snaps each token to its closest dictionary word. Tokens below
// the cutoff pass through unchanged.
func (n *QueryNormalizer) CorrectSpelling(normalized string) string {
	words := strings.Fields(normalized)
	for i, word := range words {
		words[i] = n.correctToken(word)
	}
	return strings.Join(words, " ")
}

func (n *QueryNormalizer) correctToken(token string) string {
	if len(token) < n.config.MinCorrectLength || hasDigit(token) {
		return token
	}

	best, bestScore := "", 0.0
	for _, word := range n.vocab.Dictionary {
		if word == token {
			return token
		}
		score := Ratio(token, word) / 100
		if score > bestScore {
			best, bestScore = word, score
		}
	}
	if bestScore >= n.config.SpellingCutoff {
		return best
	}
	return token
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
