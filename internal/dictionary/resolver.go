package dictionary

import (
	"github.com/ccastromar/dictionary-enricher/internal/logx"
)

// DefaultSampleLimit caps how many sample values are gathered per column.
const DefaultSampleLimit = 5

// DefaultCandidates are the header names tried, in order, for the column-name field.
var DefaultCandidates = []string{"column_name", "column", "name", "field", "Column Name", "Column"}

// missingMarkers are the cell values treated as null in sample data.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a sample cell holds no value.
func IsMissing(v string) bool {
	_, ok := missingMarkers[v]
	return ok
}

// Resolve returns the header holding column names: the first of candidates
// present in t (DefaultCandidates when candidates is empty), else the first header.
func Resolve(t *Table, candidates []string) (string, error) {
	if t == nil || len(t.Header) == 0 {
		return "", ErrNoColumns
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for _, c := range candidates {
		if t.Has(c) {
			return c, nil
		}
	}
	logx.Warn("Resolver", "no 'column_name' field found, using first column %q as column names", t.Header[0])
	return t.Header[0], nil
}

// GatherSamples returns up to limit non-missing values of column from t, in row order.
// ok is false when t is nil or has no such column.
func GatherSamples(t *Table, column string, limit int) (values []string, ok bool) {
	if t == nil {
		return nil, false
	}
	cells, ok := t.Column(column)
	if !ok {
		return nil, false
	}
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	values = make([]string, 0, limit)
	for _, v := range cells {
		if IsMissing(v) {
			continue
		}
		values = append(values, v)
		if len(values) == limit {
			break
		}
	}
	return values, true
}
