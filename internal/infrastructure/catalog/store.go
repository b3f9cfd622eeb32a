// Package catalog loads the cleaned product catalog and derives the
// per-product search fields exactly once.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

// Record is one cleaned catalog entry as produced by the ETL step.
type Record struct {
	Name                 string
	Description          string
	RatedVoltage         string
	RatedCurrent         string
	Compliance           domain.Compliance
	MountingType         string
	OperatingTemperature string
	ReferenceStandard    string
	OtherFeatures        map[string][]string
	FeatureOrder         []string
	Issues               []string
}

// Store is the immutable in-memory catalog
type Store struct {
	products []*domain.Product
}

// NewStore validates records, skips the ones without a name and computes the
// derived fields. A store with zero usable products is an error.
func NewStore(records []Record, vocab *vocabulary.Compiled, logger zerolog.Logger) (*Store, error) {
	if vocab == nil {
		return nil, fmt.Errorf("%w: no vocabulary", domain.ErrCatalogLoad)
	}

	s := &Store{products: make([]*domain.Product, 0, len(records))}
	skipped := 0
	for i, rec := range records {
		name := textutil.CollapseSpace(rec.Name)
		if isBlank(name) {
			skipped++
			logger.Warn().Int("index", i).Msg("skipping catalog record without product name")
			continue
		}
		p := build(len(s.products), name, rec, vocab)
		if len(p.ParseIssues) > 0 {
			logger.Debug().Str("product", p.Name).Strs("issues", p.ParseIssues).Msg("catalog record recovered")
		}
		s.products = append(s.products, p)
	}

	if len(s.products) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	logger.Info().Int("products", len(s.products)).Int("skipped", skipped).Msg("catalog loaded")
	return s, nil
}

// Products returns the catalog in load order. Callers must not modify it.
func (s *Store) Products() []*domain.Product {
	return s.products
}

// ByID returns the product with the given catalog position
func (s *Store) ByID(id int) (*domain.Product, bool) {
	if id < 0 || id >= len(s.products) {
		return nil, false
	}
	return s.products[id], true
}

// Count returns the number of products
func (s *Store) Count() int {
	return len(s.products)
}

func build(id int, name string, rec Record, vocab *vocabulary.Compiled) *domain.Product {
	p := &domain.Product{
		ID:                   id,
		Name:                 name,
		Description:          orNA(rec.Description),
		RatedVoltage:         orNA(rec.RatedVoltage),
		RatedCurrent:         orNA(rec.RatedCurrent),
		Compliance:           rec.Compliance,
		MountingType:         orNA(rec.MountingType),
		OperatingTemperature: orNA(rec.OperatingTemperature),
		ReferenceStandard:    orNA(rec.ReferenceStandard),
		OtherFeatures:        rec.OtherFeatures,
		FeatureOrder:         rec.FeatureOrder,
		ParseIssues:          append([]string(nil), rec.Issues...),
	}
	if p.Compliance.Standards == nil {
		p.Compliance.Standards = []string{}
	}
	if p.OtherFeatures == nil {
		p.OtherFeatures = map[string][]string{}
	}
	if len(p.FeatureOrder) != len(p.OtherFeatures) {
		p.FeatureOrder = sortedKeys(p.OtherFeatures)
	}

	desc := ""
	if p.Description != domain.NotAvailable {
		desc = p.Description
	}
	p.SearchText = strings.TrimSpace(p.Name + " " + desc)
	p.NormName = textutil.Normalize(p.Name)
	p.NormDesc = textutil.Normalize(desc)
	p.NormSearch = textutil.Normalize(p.SearchText)
	p.NormMounting = textutil.Normalize(p.MountingType)
	p.Category = vocab.ClassifyOrDefault(p.NormDesc)

	for _, key := range p.FeatureOrder {
		for _, v := range p.OtherFeatures[key] {
			if n := textutil.Normalize(v); n != "" {
				p.NormFeatures = append(p.NormFeatures, n)
			}
		}
	}
	for _, std := range p.Compliance.Standards {
		if n := textutil.Normalize(std); n != "" {
			p.NormStandards = append(p.NormStandards, n)
		}
	}

	var ok bool
	if p.Voltages, ok = parseRating(p.RatedVoltage, vocab.Voltage.Tagged); !ok {
		p.ParseIssues = append(p.ParseIssues, "rated_voltage")
	}
	if p.Currents, ok = parseRating(p.RatedCurrent, vocab.Current.Tagged); !ok {
		p.ParseIssues = append(p.ParseIssues, "rated_current")
	}
	return p
}

// parseRating extracts the numeric values of a free-form rating. Numbers
// tagged with the unit win; bare numbers are the fallback for fields like
// "6, 10, 16". ok is false when nothing parsed.
func parseRating(field string, tagged *regexp.Regexp) ([]float64, bool) {
	if isBlank(field) {
		return nil, false
	}
	if tagged != nil {
		var values []float64
		for _, m := range tagged.FindAllStringSubmatch(field, -1) {
			values = append(values, textutil.ParseNumbers(m[1])...)
		}
		if len(values) > 0 {
			return values, true
		}
	}
	values := textutil.ParseNumbers(field)
	return values, len(values) > 0
}

func orNA(s string) string {
	s = textutil.CollapseSpace(s)
	if isBlank(s) {
		return domain.NotAvailable
	}
	return s
}

// isBlank treats the spreadsheet placeholders as missing values.
func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "nan", "none", "null", "unknown", "-":
		return true
	}
	return false
}
