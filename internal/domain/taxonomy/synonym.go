package taxonomy

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

// Source tells where a synonym entry came from.
type Source string

// Entry sources, in increasing order of trust.
const (
	SourceCatalog Source = "catalog"
	SourcePattern Source = "pattern"
	SourceManual  Source = "manual"
)

// Rank orders sources: manual > pattern > catalog.
func (s Source) Rank() int {
	switch s {
	case SourceManual:
		return 2
	case SourcePattern:
		return 1
	default:
		return 0
	}
}

// SynonymEntry maps a token key to one canonical (field, value) pair.
type SynonymEntry struct {
	Field  field.Field `json:"field"`
	Value  string      `json:"value"`
	Weight float64     `json:"weight"`
	Score  float64     `json:"score"`
	Source Source      `json:"source"`
}

// Dictionary is the frozen token -> ordered entries mapping. It is safe for concurrent reads.
type Dictionary struct {
	entries map[string][]SynonymEntry
}

// NewDictionary freezes the given mapping without reordering it. Lists are copied.
// Use DictionaryBuilder to produce correctly ordered and scored lists.
func NewDictionary(entries map[string][]SynonymEntry) *Dictionary {
	d := &Dictionary{entries: make(map[string][]SynonymEntry, len(entries))}
	for k, list := range entries {
		if k == "" || len(list) == 0 {
			continue
		}
		d.entries[k] = append([]SynonymEntry(nil), list...)
	}
	return d
}

// Lookup returns the entries for a normalized token key. The slice must not be modified.
func (d *Dictionary) Lookup(key string) []SynonymEntry {
	if d == nil {
		return nil
	}
	return d.entries[key]
}

// Len returns the number of token keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Keys returns all token keys in lexical order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.Len())
	if d == nil {
		return keys
	}
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes the synonym dictionary document.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.entries)
}

// UnmarshalJSON reads a synonym dictionary document as stored, without reordering.
func (d *Dictionary) UnmarshalJSON(data []byte) error {
	var raw map[string][]SynonymEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("synonym document: %w", err)
	}
	*d = *NewDictionary(raw)
	return nil
}

// ManualEntry is one curated mapping from the manual overrides document.
type ManualEntry struct {
	Field  field.Field `json:"field"`
	Value  string      `json:"value"`
	Weight float64     `json:"weight,omitempty"`
}

// ManualOverrides is the curated document keyed by raw (not normalized) tokens.
type ManualOverrides map[string][]ManualEntry
