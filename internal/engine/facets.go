package engine

import (
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
)

type facetAcc struct {
	value filter.Value
	count int
}

// facets aggregates value counts over the filtered (pre-pagination) result set.
func (e *Engine) facets(cands []candidate, selected filter.Filters) result.Facets {
	out := make(result.Facets)
	for _, f := range field.Faceted() {
		acc := make(map[string]*facetAcc)
		for _, c := range cands {
			for _, v := range e.items[c.idx].Attributes.Get(f) {
				a, ok := acc[v.ID()]
				if !ok {
					a = &facetAcc{value: v}
					acc[v.ID()] = a
				}
				a.count++
			}
		}
		if len(acc) == 0 {
			continue
		}

		type entry struct {
			facet result.Facet
			value filter.Value
		}
		list := make([]entry, 0, len(acc))
		for id, a := range acc {
			list = append(list, entry{
				facet: result.Facet{
					Value:    id,
					Label:    e.label(f, id),
					Count:    a.count,
					Selected: selected.Contains(f, a.value),
				},
				value: a.value,
			})
		}
		sort.Slice(list, func(i, j int) bool {
			x, y := list[i], list[j]
			if f.Numeric() && x.value.Num() != y.value.Num() {
				return x.value.Num() < y.value.Num()
			}
			if !f.Numeric() {
				if x.facet.Selected != y.facet.Selected {
					return x.facet.Selected
				}
				if x.facet.Count != y.facet.Count {
					return x.facet.Count > y.facet.Count
				}
				if x.facet.Label != y.facet.Label {
					return x.facet.Label < y.facet.Label
				}
			}
			return x.facet.Value < y.facet.Value
		})

		facets := make([]result.Facet, len(list))
		for i := range list {
			facets[i] = list[i].facet
		}
		out[f] = facets
	}
	return out
}

func (e *Engine) label(f field.Field, id string) string {
	return e.taxonomy.Label(f, id)
}
