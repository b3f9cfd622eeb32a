package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

const onRequestMarker = "on request"

// Field aliases: the cleaned key first, then the spreadsheet header it came from.
var (
	nameKeys        = []string{"product_name", "Product Name"}
	descriptionKeys = []string{"description", "Description"}
	voltageKeys     = []string{"rated_voltage", "Rated Voltage"}
	currentKeys     = []string{"rated_current", "Rated Current"}
	complianceKeys  = []string{"compliance", "Compliance"}
	mountingKeys    = []string{"mounting_type", "Mounting Type"}
	temperatureKeys = []string{"operating_temperature", "Operating Temperature ", "Operating Temperature"}
	referenceKeys   = []string{"reference_standard", "Reference Standard"}
	featureKeys     = []string{"other_features", "Other Features"}
)

// LoadFile reads a catalog JSON file and builds the store. Any failure here is
// fatal for the caller: the engine cannot run without a catalog.
func LoadFile(path string, vocab *vocabulary.Compiled, logger zerolog.Logger) (*Store, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogLoad, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Int("records", len(records)).Msg("catalog decoded")
	return NewStore(records, vocab, logger)
}

// Decode parses a JSON array of product records. Individual fields are decoded
// leniently and an element that is not an object becomes a nameless record,
// which NewStore skips. Only a document that is not a JSON array fails.
func Decode(r io.Reader) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", domain.ErrCatalogLoad, err)
	}

	records := make([]Record, 0, len(raw))
	for _, elem := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			records = append(records, Record{Issues: []string{"record"}})
			continue
		}
		records = append(records, decodeRecord(obj))
	}
	return records, nil
}

func decodeRecord(obj map[string]json.RawMessage) Record {
	var rec Record
	issue := func(field string) {
		rec.Issues = append(rec.Issues, field)
	}

	rec.Name = stringField(obj, nameKeys, issue)
	rec.Description = stringField(obj, descriptionKeys, issue)
	rec.RatedVoltage = stringField(obj, voltageKeys, issue)
	rec.RatedCurrent = stringField(obj, currentKeys, issue)
	rec.MountingType = stringField(obj, mountingKeys, issue)
	rec.OperatingTemperature = stringField(obj, temperatureKeys, issue)
	rec.ReferenceStandard = stringField(obj, referenceKeys, issue)

	if raw, ok := lookup(obj, complianceKeys); ok {
		c, err := decodeCompliance(raw)
		if err != nil {
			issue("compliance")
		}
		rec.Compliance = c
	}

	if raw, ok := lookup(obj, featureKeys); ok {
		features, order, err := decodeFeatures(raw)
		if err != nil {
			issue("other_features")
		}
		rec.OtherFeatures = features
		rec.FeatureOrder = order
	}
	return rec
}

func lookup(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := obj[k]; ok && len(raw) > 0 && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func stringField(obj map[string]json.RawMessage, keys []string, issue func(string)) string {
	raw, ok := lookup(obj, keys)
	if !ok {
		return ""
	}
	s, ok := scalarString(raw)
	if !ok {
		issue(keys[0])
		return ""
	}
	return s
}

// scalarString renders a JSON string, number or bool as text.
func scalarString(raw json.RawMessage) (string, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return textutil.CollapseSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

// decodeCompliance accepts {"standards": [...]|"a, b", "on_request": bool} or a
// comma separated string carrying an optional "( On Request )" marker.
func decodeCompliance(raw json.RawMessage) (domain.Compliance, error) {
	c := domain.Compliance{Standards: []string{}}

	if s, ok := scalarString(raw); ok {
		c.Standards, c.OnRequest = splitStandards(s)
		return c, nil
	}

	var obj struct {
		Standards json.RawMessage `json:"standards"`
		OnRequest interface{}     `json:"on_request"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return c, err
	}

	switch v := obj.OnRequest.(type) {
	case bool:
		c.OnRequest = v
	case string:
		c.OnRequest, _ = strconv.ParseBool(v)
	}

	if len(obj.Standards) == 0 || string(obj.Standards) == "null" {
		return c, nil
	}
	if s, ok := scalarString(obj.Standards); ok {
		standards, onRequest := splitStandards(s)
		c.Standards = standards
		c.OnRequest = c.OnRequest || onRequest
		return c, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(obj.Standards, &list); err != nil {
		return c, err
	}
	for _, item := range list {
		s, ok := scalarString(item)
		if !ok || isBlank(s) {
			continue
		}
		c.Standards = append(c.Standards, s)
	}
	return c, nil
}

func splitStandards(s string) ([]string, bool) {
	onRequest := strings.Contains(strings.ToLower(s), onRequestMarker)
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = textutil.CollapseSpace(part)
		if isBlank(part) {
			continue
		}
		out = append(out, part)
	}
	return out, onRequest
}

// decodeFeatures walks the other_features object with a token decoder so the
// category order of the source file is kept.
func decodeFeatures(raw json.RawMessage) (map[string][]string, []string, error) {
	features := make(map[string][]string)

	if s, ok := scalarString(raw); ok {
		if !isBlank(s) {
			features["additional"] = []string{s}
			return features, []string{"additional"}, nil
		}
		return features, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return features, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return features, nil, fmt.Errorf("other_features is not an object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return features, order, err
		}
		key := textutil.CollapseSpace(fmt.Sprint(keyTok))

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return features, order, err
		}
		values := featureValues(value)
		if key == "" || len(values) == 0 {
			continue
		}
		if _, seen := features[key]; !seen {
			order = append(order, key)
		}
		features[key] = append(features[key], values...)
	}
	return features, order, nil
}

func featureValues(raw json.RawMessage) []string {
	if s, ok := scalarString(raw); ok {
		if isBlank(s) {
			return nil
		}
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	var out []string
	for _, item := range list {
		s, ok := scalarString(item)
		if !ok || isBlank(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
