package indexer

import (
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

// ManualFloorWeight is the minimum weight of a curated entry.
const ManualFloorWeight = 10.0

type pairKey struct {
	field field.Field
	value string
}

// MergeManual applies curated overrides to generated entry lists and returns a new mapping.
// Each raw override token is registered under every normalized key. For those keys,
// manual entries replace generated entries with the same (field, value) and are placed
// ahead of the remaining generated ones. Other keys are copied unchanged.
func MergeManual(generated map[string][]taxonomy.SynonymEntry, manual taxonomy.ManualOverrides) map[string][]taxonomy.SynonymEntry {
	out := make(map[string][]taxonomy.SynonymEntry, len(generated))
	for k, list := range generated {
		out[k] = append([]taxonomy.SynonymEntry(nil), list...)
	}

	byKey := manualByKey(manual)
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		curated := byKey[key]
		taxonomy.SortEntries(curated)
		overridden := make(map[pairKey]struct{}, len(curated))
		for _, e := range curated {
			overridden[pairKey{e.Field, e.Value}] = struct{}{}
		}
		merged := append([]taxonomy.SynonymEntry(nil), curated...)
		for _, e := range out[key] {
			if _, ok := overridden[pairKey{e.Field, e.Value}]; ok {
				continue
			}
			merged = append(merged, e)
		}
		taxonomy.Rescore(merged)
		out[key] = merged
	}
	return out
}

// manualByKey groups curated entries by normalized key, collapsing duplicate
// (field, value) pairs to the highest weight.
func manualByKey(manual taxonomy.ManualOverrides) map[string][]taxonomy.SynonymEntry {
	acc := make(map[string]map[pairKey]float64)
	for raw, entries := range manual {
		keys := textnorm.Normalize(raw)
		if len(keys) == 0 {
			continue
		}
		for _, me := range entries {
			if !me.Field.Valid() {
				continue
			}
			v, ok := filter.Parse(me.Field, me.Value)
			if !ok {
				continue
			}
			w := me.Weight
			if w < ManualFloorWeight {
				w = ManualFloorWeight
			}
			pk := pairKey{me.Field, v.ID()}
			for _, key := range keys {
				m, ok := acc[key]
				if !ok {
					m = make(map[pairKey]float64)
					acc[key] = m
				}
				if w > m[pk] {
					m[pk] = w
				}
			}
		}
	}

	out := make(map[string][]taxonomy.SynonymEntry, len(acc))
	for key, m := range acc {
		list := make([]taxonomy.SynonymEntry, 0, len(m))
		for pk, w := range m {
			list = append(list, taxonomy.SynonymEntry{
				Field:  pk.field,
				Value:  pk.value,
				Weight: w,
				Source: taxonomy.SourceManual,
			})
		}
		out[key] = list
	}
	return out
}
