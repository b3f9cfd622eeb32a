package usecase

import (
	"sort"
	"sync"

	"github.com/elcom/backend/internal/domain"
)

// PopularityTracker counts how often each product was the top result.
// It is safe for concurrent use.
type PopularityTracker struct {
	mu     sync.Mutex
	counts map[string]int
	order  map[string]int // first-seen sequence, breaks count ties
	next   int
}

// NewPopularityTracker creates an empty tracker
func NewPopularityTracker() *PopularityTracker {
	return &PopularityTracker{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

// Record increments the counter for a product identity.
func (t *PopularityTracker) Record(product string) {
	if product == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.order[product]; !seen {
		t.order[product] = t.next
		t.next++
	}
	t.counts[product]++
}

// Count returns the current counter for a product.
func (t *PopularityTracker) Count(product string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[product]
}

// Top returns up to n entries ordered by count descending. Equal counts keep
// the order in which the products were first recorded.
func (t *PopularityTracker) Top(n int) []domain.PopularityEntry {
	t.mu.Lock()
	entries := make([]domain.PopularityEntry, 0, len(t.counts))
	for product, count := range t.counts {
		entries = append(entries, domain.PopularityEntry{Product: product, Count: count})
	}
	order := make(map[string]int, len(t.order))
	for k, v := range t.order {
		order[k] = v
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return order[entries[i].Product] < order[entries[j].Product]
	})

	if n <= 0 {
		return []domain.PopularityEntry{}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
