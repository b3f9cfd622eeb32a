package domain

// Status distinguishes a found result from a defined empty result
type Status string

const (
	StatusFound   Status = "found"
	StatusNoMatch Status = "no_match"
)

// Strategy names the match strategy that produced an outcome.
type Strategy string

const (
	StrategyExact     Strategy = "exact"
	StrategyFuzzyName Strategy = "fuzzy_name"
	StrategyFields    Strategy = "fields"
	StrategyNone      Strategy = "none"
)

// ScoredCandidate is a transient scoring result consumed by the ranker
type ScoredCandidate struct {
	Score         float64
	CategoryMatch bool
	Degraded      bool // a numeric term was skipped because the field did not parse
	Product       *Product
}

// SearchOutcome is the typed result of a search.
type SearchOutcome struct {
	Status   Status        `json:"status"`
	Strategy Strategy      `json:"strategy"`
	Query    QueryAnalysis `json:"query"`
	Products []*Product    `json:"products"`
	Scores   []float64     `json:"scores"`
	Degraded int           `json:"degraded"`
	Cached   bool          `json:"cached"`
}

// Found reports whether at least one product was returned.
func (o *SearchOutcome) Found() bool {
	return o != nil && o.Status == StatusFound && len(o.Products) > 0
}

// PopularityEntry is one row of the popularity view
type PopularityEntry struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}
