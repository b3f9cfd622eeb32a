package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

// Field scoring weights. Every term is additive and non-negative.
const (
	weightCategory         = 2.0 // Product category equals the query category
	weightEVCategory       = 3.0 // EV query against an EV-described product (replaces weightCategory)
	weightNameContains     = 2.5 // Query is a substring of the product name
	weightDescContains     = 1.5 // Query is a substring of the description
	weightSearchSimilarity = 1.0 // Token-sort similarity against the search text, scaled to 0-1
	weightNumericNear      = 1.0 // Rating within the near window of the requested range
	weightNumericClose     = 0.5 // Rating within the close window
	weightFeature          = 0.8 // Query or extracted feature found in other_features
	weightCompliance       = 0.3 // Query found in a compliance standard
	weightKeywordFilter    = 0.5 // Keyword filter value found in its product field
	weightAttributeFlag    = 0.5 // Attribute flag synonym found in the product
)

// Proximity windows, in volts and amps, measured from the requested range.
const (
	voltageNearWindow  = 10.0
	voltageCloseWindow = 50.0
	currentNearWindow  = 1.0
	currentCloseWindow = 5.0
)

// ExactMatchScore is reported for a product resolved by the exact name stage.
const ExactMatchScore = 100.0

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	FuzzyThreshold     float64 // 0-100, a fuzzy name match must exceed this
	MinRelevance       float64 // field-scored candidates must exceed this
	EnableDebugLogging bool
}

// DefaultMatchConfig returns the baseline thresholds
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		FuzzyThreshold: 65.0,
		MinRelevance:   0.3,
	}
}

// MatchingService implements the three match strategies: exact name,
// fuzzy name and weighted field scoring.
type MatchingService struct {
	vocab              *vocabulary.Compiled
	fuzzyThreshold     float64
	minRelevance       float64
	enableDebugLogging bool
	logger             zerolog.Logger
}

// NewMatchingService creates a new matching service with the given
// configuration. Thresholds are used as given; zero is a valid setting.
func NewMatchingService(vocab *vocabulary.Compiled, config MatchConfig, logger zerolog.Logger) *MatchingService {
	return &MatchingService{
		vocab:              vocab,
		fuzzyThreshold:     config.FuzzyThreshold,
		minRelevance:       config.MinRelevance,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger,
	}
}

// ExactMatch returns the product whose normalized name equals the query or,
// failing that, the first product whose normalized name occurs inside the
// query. Equality is checked across the whole catalog before containment.
func (s *MatchingService) ExactMatch(normalized string, products []*domain.Product) *domain.Product {
	if normalized == "" {
		return nil
	}

	for _, p := range products {
		if p.NormName != "" && p.NormName == normalized {
			return p
		}
	}
	for _, p := range products {
		if p.NormName != "" && strings.Contains(normalized, p.NormName) {
			return p
		}
	}
	return nil
}

// FuzzyNameMatch returns the product whose name is most similar to the query
// by token-sort ratio, if that similarity strictly exceeds the threshold.
// Ties keep the earliest product in catalog order.
func (s *MatchingService) FuzzyNameMatch(query string, products []*domain.Product) (*domain.Product, float64, bool) {
	if query == "" {
		return nil, 0, false
	}

	var best *domain.Product
	bestRatio := -1.0
	for _, p := range products {
		if ratio := TokenSortRatio(query, p.NormName); ratio > bestRatio {
			best, bestRatio = p, ratio
		}
	}

	if best == nil || bestRatio <= s.fuzzyThreshold {
		return nil, bestRatio, false
	}

	if s.enableDebugLogging {
		s.logger.Debug().Str("query", query).Str("product", best.Name).Float64("ratio", bestRatio).Msg("fuzzy name match")
	}
	return best, bestRatio, true
}

// ScoreAll scores every product against the query and keeps the candidates
// above the relevance floor, in catalog order.
func (s *MatchingService) ScoreAll(
	ctx context.Context,
	query string,
	filters domain.FilterSet,
	products []*domain.Product,
) ([]domain.ScoredCandidate, error) {
	var candidates []domain.ScoredCandidate

	for _, p := range products {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		c := s.Score(query, filters, p)
		if s.enableDebugLogging {
			s.logger.Debug().
				Str("product", p.Name).
				Float64("score", c.Score).
				Bool("category_match", c.CategoryMatch).
				Bool("degraded", c.Degraded).
				Msg("scored")
		}

		if c.Score > s.minRelevance {
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

// Score computes the weighted relevance of one product:
//   - category agreement, with the EV special case
//   - query containment in name and description
//   - token-sort similarity against the combined search text
//   - voltage and current proximity to the requested ranges
//   - other_features and compliance containment
//   - keyword filter and attribute flag agreement
//
// A numeric term is skipped, and the candidate marked degraded, when the
// product rating did not parse.
func (s *MatchingService) Score(query string, filters domain.FilterSet, p *domain.Product) domain.ScoredCandidate {
	c := domain.ScoredCandidate{Product: p}

	if filters.Category != "" {
		c.CategoryMatch = filters.Category == p.Category
		switch {
		case filters.Category == s.vocab.EVCategory && s.vocab.HasEVKeyword(p.NormDesc):
			c.Score += weightEVCategory
		case c.CategoryMatch:
			c.Score += weightCategory
		}
	}

	if query != "" {
		if strings.Contains(p.NormName, query) {
			c.Score += weightNameContains
		}
		if strings.Contains(p.NormDesc, query) {
			c.Score += weightDescContains
		}
		c.Score += weightSearchSimilarity * TokenSortRatio(query, p.NormSearch) / 100
	}

	if filters.Voltage != nil {
		term, ok := proximity(*filters.Voltage, p.Voltages, voltageNearWindow, voltageCloseWindow)
		c.Score += term
		c.Degraded = c.Degraded || !ok
	}
	if filters.Current != nil {
		term, ok := proximity(*filters.Current, p.Currents, currentNearWindow, currentCloseWindow)
		c.Score += term
		c.Degraded = c.Degraded || !ok
	}

	if s.featureMatch(query, filters.Features, p.NormFeatures) {
		c.Score += weightFeature
	}

	if query != "" {
		for _, std := range p.NormStandards {
			if strings.Contains(std, query) {
				c.Score += weightCompliance
				break
			}
		}
	}

	for key, value := range filters.Keywords {
		if textutil.ContainsPhrase(p.FieldByKey(key), textutil.Normalize(value)) {
			c.Score += weightKeywordFilter
		}
	}

	for _, flag := range s.vocab.Flags {
		if !filters.Flags[flag.Name] {
			continue
		}
		if hasAnyPhrase(p.NormSearch, flag.Synonyms) || hasAnyPhraseIn(p.NormFeatures, flag.Synonyms) {
			c.Score += weightAttributeFlag
		}
	}

	return c
}

func (s *MatchingService) featureMatch(query string, features map[string]string, productFeatures []string) bool {
	for _, f := range productFeatures {
		if query != "" && strings.Contains(f, query) {
			return true
		}
		for _, value := range features {
			if textutil.ContainsPhrase(f, textutil.Normalize(value)) {
				return true
			}
		}
	}
	return false
}

// proximity scores the closest rating against a range. ok is false when
// the product has no parsed rating to compare.
func proximity(r domain.Range, values []float64, near, closeWindow float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	best := r.Distance(values[0])
	for _, v := range values[1:] {
		if d := r.Distance(v); d < best {
			best = d
		}
	}

	switch {
	case best <= near:
		return weightNumericNear, true
	case best <= closeWindow:
		return weightNumericClose, true
	default:
		return 0, true
	}
}

func hasAnyPhrase(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if textutil.ContainsPhrase(text, phrase) {
			return true
		}
	}
	return false
}

func hasAnyPhraseIn(texts, phrases []string) bool {
	for _, t := range texts {
		if hasAnyPhrase(t, phrases) {
			return true
		}
	}
	return false
}
