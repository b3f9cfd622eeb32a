package usecase

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/infrastructure/catalog"
	"github.com/elcom/backend/internal/vocabulary"
)

var testRecords = []catalog.Record{
	{
		Name:          "RS-1601",
		Description:   "Rocker Switch SPST illuminated",
		RatedVoltage:  "250V AC",
		RatedCurrent:  "16A",
		Compliance:    domain.Compliance{Standards: []string{"UL", "CE", "nan"}, OnRequest: true},
		MountingType:  "Panel Mount (Snap-in)",
		OtherFeatures: map[string][]string{"Actuator Colour": {"Red", "Black"}, "Protection Degree": {"IP65"}},
		FeatureOrder:  []string{"Actuator Colour", "Protection Degree"},
	},
	{
		Name:         "RS-1602",
		Description:  "Rocker Switch DPDT",
		RatedVoltage: "125/250V AC",
		RatedCurrent: "6A, 10A",
		Compliance:   domain.Compliance{Standards: []string{"UL", "CE ( On Request )"}, OnRequest: true},
		MountingType: "Panel Mount",
	},
	{
		Name:          "EV-T2-32",
		Description:   "EV Charging Connector Type 2",
		RatedVoltage:  "480V AC",
		RatedCurrent:  "32A",
		Compliance:    domain.Compliance{Standards: []string{"IEC 62196-2"}},
		MountingType:  "Cable",
		OtherFeatures: map[string][]string{"Protection Degree": {"IP54"}},
		FeatureOrder:  []string{"Protection Degree"},
	},
	{
		Name:         "FL-10",
		Description:  "Single Phase EMI Filter",
		RatedVoltage: "250V",
		RatedCurrent: "1, 3, 6, 10",
		Compliance:   domain.Compliance{Standards: []string{"UL 1283", "ENEC"}},
		MountingType: "Chassis",
	},
	{
		Name:         "TS-300",
		Description:  "Toggle Switch SPDT",
		RatedVoltage: "125V AC",
		RatedCurrent: "3A",
		MountingType: "Panel Mount",
	},
	{
		Name:          "SC-40",
		Description:   "Solar Connector MC4",
		RatedVoltage:  "1000V DC",
		RatedCurrent:  "30A",
		MountingType:  "Cable",
		OtherFeatures: map[string][]string{"Protection Degree": {"IP67"}},
		FeatureOrder:  []string{"Protection Degree"},
	},
	{
		Name:         "FH-5",
		Description:  "Fuse Holder 5x20mm",
		RatedVoltage: "garbled",
		RatedCurrent: "",
		MountingType: "PCB",
	},
}

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.NewStore(testRecords, vocabulary.MustDefault(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func productByName(t *testing.T, store *catalog.Store, name string) *domain.Product {
	t.Helper()
	for _, p := range store.Products() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not in fixture", name)
	return nil
}

func names(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
