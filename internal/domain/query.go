package domain

import (
	"fmt"
	"math"
)

// Range is an inclusive numeric window extracted from a query. Max may be +Inf.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Point reports whether the range is a single value (e.g. "16A")
func (r Range) Point() bool {
	return r.Min == r.Max
}

// Distance returns how far v lies outside the range, 0 when inside.
func (r Range) Distance(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	default:
		return 0
	}
}

func (r Range) String() string {
	if math.IsInf(r.Max, 1) {
		return fmt.Sprintf("(%g, +inf)", r.Min)
	}
	return fmt.Sprintf("(%g, %g)", r.Min, r.Max)
}

// MarshalJSON encodes an open upper bound as null since JSON has no infinity.
func (r Range) MarshalJSON() ([]byte, error) {
	if math.IsInf(r.Max, 1) {
		return []byte(fmt.Sprintf(`{"min":%g,"max":null}`, r.Min)), nil
	}
	return []byte(fmt.Sprintf(`{"min":%g,"max":%g}`, r.Min, r.Max)), nil
}

// FilterSet holds the structured constraints derived from one query.
//   - Keywords: literal values keyed by product field ("description", "mounting_type", ...)
//   - Flags: boolean attribute presence ("illuminated", "waterproof", ...)
//   - Features: other_features-scoped values ("protection_degree" -> "ip67")
type FilterSet struct {
	Category string            `json:"category,omitempty"`
	Keywords map[string]string `json:"keywords,omitempty"`
	Flags    map[string]bool   `json:"flags,omitempty"`
	Features map[string]string `json:"features,omitempty"`
	Voltage  *Range            `json:"voltage_range,omitempty"`
	Current  *Range            `json:"current_range,omitempty"`
}

// NewFilterSet returns an empty filter set with its maps allocated
func NewFilterSet() FilterSet {
	return FilterSet{
		Keywords: make(map[string]string),
		Flags:    make(map[string]bool),
		Features: make(map[string]string),
	}
}

// Empty reports whether no constraint was extracted.
func (f FilterSet) Empty() bool {
	return f.Category == "" && len(f.Keywords) == 0 && len(f.Flags) == 0 &&
		len(f.Features) == 0 && f.Voltage == nil && f.Current == nil
}

// QueryAnalysis captures every intermediate form of a single query.
type QueryAnalysis struct {
	Raw        string    `json:"raw"`
	Normalized string    `json:"normalized"`
	Cleaned    string    `json:"cleaned"` // after stop-word removal and spelling correction
	Filters    FilterSet `json:"filters"`
}
