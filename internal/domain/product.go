package domain

// NotAvailable is substituted for any optional catalog field that is missing.
const NotAvailable = "N/A"

// Compliance lists the certification standards a product carries
type Compliance struct {
	Standards []string `json:"standards"`
	OnRequest bool     `json:"on_request"`
}

// Product is a single catalog entry. It is immutable once the catalog is loaded;
// the derived fields are filled in exactly once by the catalog store.
type Product struct {
	ID                   int                 `json:"id"`
	Name                 string              `json:"product_name"`
	Description          string              `json:"description"`
	RatedVoltage         string              `json:"rated_voltage"`
	RatedCurrent         string              `json:"rated_current"`
	Compliance           Compliance          `json:"compliance"`
	MountingType         string              `json:"mounting_type"`
	OperatingTemperature string              `json:"operating_temperature"`
	ReferenceStandard    string              `json:"reference_standard"`
	OtherFeatures        map[string][]string `json:"other_features,omitempty"`
	FeatureOrder         []string            `json:"-"` // keys of OtherFeatures in source order

	// Derived at load time
	Category      string    `json:"category"`
	SearchText    string    `json:"search_text"`
	NormName      string    `json:"-"`
	NormDesc      string    `json:"-"`
	NormSearch    string    `json:"-"`
	NormMounting  string    `json:"-"`
	NormFeatures  []string  `json:"-"`
	NormStandards []string  `json:"-"`
	Voltages      []float64 `json:"-"`
	Currents      []float64 `json:"-"`
	ParseIssues   []string  `json:"parse_issues,omitempty"`
}

// FieldByKey returns the normalized product field a keyword filter key refers to.
// Unknown keys fall back to the normalized search text.
func (p *Product) FieldByKey(key string) string {
	switch key {
	case "description":
		return p.NormDesc
	case "mounting_type":
		return p.NormMounting
	case "name", "product_name":
		return p.NormName
	default:
		return p.NormSearch
	}
}
