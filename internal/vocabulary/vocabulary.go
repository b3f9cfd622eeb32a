// Package vocabulary holds the keyword, synonym, stop-word and unit-pattern
// tables that drive query analysis. The tables are data: they load from YAML
// and compile once, so the scoring code never branches on literal keywords.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elcom/backend/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

// CategoryRule maps a set of keywords onto one category label
type CategoryRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// KeywordFilter maps keywords onto a literal filter value for one product field
type KeywordFilter struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
}

// FeaturePattern extracts an other_features-scoped value with a regex.
// The first capture group is appended to Prefix to form the filter value.
type FeaturePattern struct {
	Key     string `yaml:"key"`
	Pattern string `yaml:"pattern"`
	Prefix  string `yaml:"prefix"`
}

// Units holds regex alternations for unit tokens
type Units struct {
	Voltage string `yaml:"voltage"`
	Current string `yaml:"current"`
}

// RangePhrases lists the words that introduce a numeric range
type RangePhrases struct {
	Between []string `yaml:"between"`
	Upper   []string `yaml:"upper"`
	Lower   []string `yaml:"lower"`
}

// Vocabulary is the editable, uncompiled form of the filter vocabulary.
type Vocabulary struct {
	DefaultCategory   string              `yaml:"default_category"`
	EVCategory        string              `yaml:"ev_category"`
	EVKeywords        []string            `yaml:"ev_keywords"`
	ConnectorFamilies []CategoryRule      `yaml:"connector_families"`
	Categories        []CategoryRule      `yaml:"categories"`
	StopWords         []string            `yaml:"stop_words"`
	KeywordFilters    []KeywordFilter     `yaml:"keyword_filters"`
	AttributeFlags    map[string][]string `yaml:"attribute_flags"`
	Units             Units               `yaml:"units"`
	RangePhrases      RangePhrases        `yaml:"range_phrases"`
	FeaturePatterns   []FeaturePattern    `yaml:"feature_patterns"`
	SpellingWords     []string            `yaml:"spelling_words"`
}

// Default returns the built-in vocabulary.
func Default() (*Vocabulary, error) {
	return Parse(defaultYAML)
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidVocabulary, err)
	}
	if v.DefaultCategory == "" {
		v.DefaultCategory = "other"
	}
	return &v, nil
}

// Load reads a vocabulary file, falling back to the built-in one when path is empty.
func Load(path string) (*Compiled, error) {
	clean := strings.TrimSpace(path)
	var (
		v   *Vocabulary
		err error
	)
	if clean == "" {
		v, err = Default()
	} else {
		var data []byte
		data, err = os.ReadFile(filepath.Clean(clean))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidVocabulary, clean, err)
		}
		v, err = Parse(data)
	}
	if err != nil {
		return nil, err
	}
	return v.Compile()
}

// MustDefault compiles the built-in vocabulary and panics if it is broken.
// Intended for tests and tools.
func MustDefault() *Compiled {
	v, err := Default()
	if err != nil {
		panic(err)
	}
	c, err := v.Compile()
	if err != nil {
		panic(err)
	}
	return c
}
