package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/vocabulary"
)

func loadFixture(t *testing.T) *Store {
	t.Helper()
	store, err := LoadFile(filepath.Join("testdata", "catalog.json"), vocabulary.MustDefault(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestLoadFile(t *testing.T) {
	store := loadFixture(t)

	t.Run("skips records without a name", func(t *testing.T) {
		assert.Equal(t, 5, store.Count())
		for _, p := range store.Products() {
			assert.NotEmpty(t, p.Name)
		}
	})

	t.Run("ids follow catalog order", func(t *testing.T) {
		for i, p := range store.Products() {
			assert.Equal(t, i, p.ID)
			got, ok := store.ByID(i)
			require.True(t, ok)
			assert.Same(t, p, got)
		}
		_, ok := store.ByID(99)
		assert.False(t, ok)
		_, ok = store.ByID(-1)
		assert.False(t, ok)
	})

	t.Run("derives category and search text once", func(t *testing.T) {
		rs, _ := store.ByID(0)
		assert.Equal(t, "switch", rs.Category)
		assert.Equal(t, "RS-1601 Rocker Switch SPST illuminated", rs.SearchText)
		assert.Equal(t, "rs 1601", rs.NormName)

		ev, _ := store.ByID(2)
		assert.Equal(t, "ev_connector", ev.Category)

		filter, _ := store.ByID(3)
		assert.Equal(t, "emi_filter", filter.Category)
	})

	t.Run("parses numeric ratings", func(t *testing.T) {
		rs, _ := store.ByID(1)
		assert.Equal(t, []float64{250}, rs.Voltages)
		assert.Equal(t, []float64{6, 10}, rs.Currents)

		filter, _ := store.ByID(3)
		assert.Equal(t, []float64{1, 3, 6, 10}, filter.Currents)
	})

	t.Run("compliance shapes", func(t *testing.T) {
		rs, _ := store.ByID(0)
		assert.Equal(t, []string{"UL", "CE"}, rs.Compliance.Standards)
		assert.True(t, rs.Compliance.OnRequest)

		rs2, _ := store.ByID(1)
		assert.Equal(t, []string{"UL", "CE ( On Request )"}, rs2.Compliance.Standards)
		assert.True(t, rs2.Compliance.OnRequest)
	})

	t.Run("feature shapes keep source order", func(t *testing.T) {
		ev, _ := store.ByID(2)
		assert.Equal(t, []string{"Type", "Protection Degree", "Durability (Mechanical Cycles Max.)"}, ev.FeatureOrder)
		assert.Equal(t, []string{"10000"}, ev.OtherFeatures["Durability (Mechanical Cycles Max.)"])
		assert.Equal(t, "-30°C To 50°C", ev.OperatingTemperature)

		filter, _ := store.ByID(3)
		assert.Equal(t, []string{"Medical grade variants available"}, filter.OtherFeatures["additional"])
	})

	t.Run("malformed record is recovered, not dropped", func(t *testing.T) {
		fh, _ := store.ByID(4)
		assert.Equal(t, "FH-5", fh.Name)
		assert.Equal(t, domain.NotAvailable, fh.RatedCurrent)
		assert.Equal(t, domain.NotAvailable, fh.OperatingTemperature)
		assert.Empty(t, fh.Voltages)
		assert.Empty(t, fh.Currents)
		assert.Contains(t, fh.ParseIssues, "compliance")
		assert.Contains(t, fh.ParseIssues, "rated_voltage")
		assert.Contains(t, fh.ParseIssues, "rated_current")
		assert.Equal(t, []string{"Touch proof"}, fh.OtherFeatures["Notes"])
	})
}

func TestLoadFileFailures(t *testing.T) {
	vocab := vocabulary.MustDefault()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), vocab, zerolog.Nop())
		assert.True(t, errors.Is(err, domain.ErrCatalogLoad))
	})

	t.Run("bad json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"`), 0o644))
		_, err := LoadFile(path, vocab, zerolog.Nop())
		assert.ErrorIs(t, err, domain.ErrCatalogLoad)
	})

	t.Run("no usable records", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`[]`))
		require.NoError(t, err)

		_, err = NewStore([]Record{{Name: "nan"}, {Name: "  "}}, vocab, zerolog.Nop())
		assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
	})
}

func TestLoadFileSkipsNonObjectRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.json")
	doc := `[{"product_name":"RS-1601","rated_current":"16A"}, "stray row", 42, null, [1], {"product_name":"FL-10"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	records, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, records, 6)

	store, err := LoadFile(path, vocabulary.MustDefault(), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 2, store.Count())
	assert.Equal(t, "RS-1601", store.Products()[0].Name)
	assert.Equal(t, "FL-10", store.Products()[1].Name)
}

func TestNewStoreDefaults(t *testing.T) {
	store, err := NewStore([]Record{{Name: "  Bare   Part  "}}, vocabulary.MustDefault(), zerolog.Nop())
	require.NoError(t, err)

	p, _ := store.ByID(0)
	assert.Equal(t, "Bare Part", p.Name)
	assert.Equal(t, domain.NotAvailable, p.Description)
	assert.Equal(t, domain.NotAvailable, p.MountingType)
	assert.Equal(t, "other", p.Category)
	assert.Equal(t, "Bare Part", p.SearchText)
	assert.NotNil(t, p.OtherFeatures)
	assert.NotNil(t, p.Compliance.Standards)
}
