package taxonomy

import (
	"math"
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

type entryKey struct {
	field field.Field
	value string
}

type accum struct {
	weight float64
	source Source
}

// DictionaryBuilder accumulates weighted synonym entries during a build.
// It is not safe for concurrent use and is discarded once frozen.
type DictionaryBuilder struct {
	acc map[string]map[entryKey]*accum
}

// NewDictionaryBuilder creates an empty builder.
func NewDictionaryBuilder() *DictionaryBuilder {
	return &DictionaryBuilder{acc: make(map[string]map[entryKey]*accum)}
}

// Add registers token -> (f, value). Repeated registrations sum their weights;
// the entry keeps the most trusted source seen.
func (b *DictionaryBuilder) Add(token string, f field.Field, value string, weight float64, src Source) {
	if token == "" || value == "" || !f.Valid() || weight <= 0 {
		return
	}
	byToken, ok := b.acc[token]
	if !ok {
		byToken = make(map[entryKey]*accum)
		b.acc[token] = byToken
	}
	k := entryKey{field: f, value: value}
	a, ok := byToken[k]
	if !ok {
		byToken[k] = &accum{weight: weight, source: src}
		return
	}
	a.weight += weight
	if src.Rank() > a.source.Rank() {
		a.source = src
	}
}

// Entries returns ordered, scored entry lists per token: weight desc, then source rank,
// field and value as deterministic tie-breaks.
func (b *DictionaryBuilder) Entries() map[string][]SynonymEntry {
	out := make(map[string][]SynonymEntry, len(b.acc))
	for token, byToken := range b.acc {
		list := make([]SynonymEntry, 0, len(byToken))
		for k, a := range byToken {
			list = append(list, SynonymEntry{
				Field:  k.field,
				Value:  k.value,
				Weight: roundWeight(a.weight),
				Source: a.source,
			})
		}
		SortEntries(list)
		Rescore(list)
		out[token] = list
	}
	return out
}

// Build freezes the accumulated entries into a Dictionary.
func (b *DictionaryBuilder) Build() *Dictionary {
	return &Dictionary{entries: b.Entries()}
}

// SortEntries orders entries by weight desc with deterministic tie-breaks.
func SortEntries(list []SynonymEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		x, y := list[i], list[j]
		if x.Weight != y.Weight {
			return x.Weight > y.Weight
		}
		if x.Source.Rank() != y.Source.Rank() {
			return x.Source.Rank() > y.Source.Rank()
		}
		if x.Field != y.Field {
			return x.Field < y.Field
		}
		return x.Value < y.Value
	})
}

// Rescore sets every Score to Weight divided by the largest weight in the list.
func Rescore(list []SynonymEntry) {
	top := 0.0
	for _, e := range list {
		if e.Weight > top {
			top = e.Weight
		}
	}
	for i := range list {
		if top > 0 {
			list[i].Score = roundWeight(list[i].Weight / top)
		} else {
			list[i].Score = 0
		}
	}
}

// roundWeight trims float noise from summed weights so documents are byte-stable.
func roundWeight(w float64) float64 {
	return math.Round(w*1e6) / 1e6
}
