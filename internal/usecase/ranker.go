package usecase

import (
	"sort"

	"github.com/elcom/backend/internal/domain"
)

// Rank orders candidates by score descending, breaking ties in favour of a
// category match and then the original catalog order, and caps the list.
func Rank(candidates []domain.ScoredCandidate, limit int) []domain.ScoredCandidate {
	ranked := make([]domain.ScoredCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CategoryMatch && !ranked[j].CategoryMatch
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
