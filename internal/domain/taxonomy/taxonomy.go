// Package taxonomy holds the frozen outputs of an index build: canonical values
// per field and the synonym dictionary.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

// CanonicalValue is one known value of a canonical field.
type CanonicalValue struct {
	Field        field.Field `json:"field"`
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	Count        int         `json:"count"`
	NumericValue *float64    `json:"numericValue,omitempty"`
	Aliases      []string    `json:"aliases"`
}

// Taxonomy is the read-only catalog of canonical values, one ordered list per field.
type Taxonomy struct {
	values [field.Count][]CanonicalValue
	index  [field.Count]map[string]int
}

// NewTaxonomy freezes per-field value lists. Lists are re-sorted into canonical order:
// numeric fields ascending by number, others by count desc then label then id.
func NewTaxonomy(values map[field.Field][]CanonicalValue) *Taxonomy {
	t := &Taxonomy{}
	for f, list := range values {
		if !f.Valid() {
			continue
		}
		sorted := append([]CanonicalValue(nil), list...)
		SortValues(f, sorted)
		i := f.Index()
		t.values[i] = sorted
		t.index[i] = make(map[string]int, len(sorted))
		for j, v := range sorted {
			t.index[i][v.ID] = j
		}
	}
	return t
}

// SortValues orders a value list for field f in place.
func SortValues(f field.Field, list []CanonicalValue) {
	sort.SliceStable(list, func(a, b int) bool {
		x, y := list[a], list[b]
		if f.Numeric() && x.NumericValue != nil && y.NumericValue != nil {
			if *x.NumericValue != *y.NumericValue {
				return *x.NumericValue < *y.NumericValue
			}
			return x.ID < y.ID
		}
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		if x.Label != y.Label {
			return x.Label < y.Label
		}
		return x.ID < y.ID
	})
}

// Values returns the ordered values of f. The slice must not be modified.
func (t *Taxonomy) Values(f field.Field) []CanonicalValue {
	if t == nil || !f.Valid() {
		return nil
	}
	return t.values[f.Index()]
}

// Value looks up a single canonical value.
func (t *Taxonomy) Value(f field.Field, id string) (CanonicalValue, bool) {
	if t == nil || !f.Valid() {
		return CanonicalValue{}, false
	}
	j, ok := t.index[f.Index()][id]
	if !ok {
		return CanonicalValue{}, false
	}
	return t.values[f.Index()][j], true
}

// Label returns the display label for (f, id), falling back to id itself.
func (t *Taxonomy) Label(f field.Field, id string) string {
	if v, ok := t.Value(f, id); ok && v.Label != "" {
		return v.Label
	}
	return id
}

// Size returns the total number of canonical values.
func (t *Taxonomy) Size() int {
	if t == nil {
		return 0
	}
	n := 0
	for i := range t.values {
		n += len(t.values[i])
	}
	return n
}

// MarshalJSON writes the taxonomy document: {field: [CanonicalValue...]} for non-empty fields.
func (t *Taxonomy) MarshalJSON() ([]byte, error) {
	doc := make(map[field.Field][]CanonicalValue)
	for i := range t.values {
		if len(t.values[i]) > 0 {
			doc[field.Field(i+1)] = t.values[i]
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads a taxonomy document. Unknown fields are rejected so that a
// document from an incompatible build is not half-loaded.
func (t *Taxonomy) UnmarshalJSON(data []byte) error {
	var raw map[string][]CanonicalValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("taxonomy document: %w", err)
	}
	values := make(map[field.Field][]CanonicalValue, len(raw))
	for name, list := range raw {
		f, err := field.Parse(name)
		if err != nil {
			return fmt.Errorf("taxonomy document: %w", err)
		}
		values[f] = list
	}
	*t = *NewTaxonomy(values)
	return nil
}
