package catalogsearch

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/engine"
	"github.com/kailas-cloud/catalogsearch/internal/query"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

func sortMode(s SortMode) mode.Mode {
	return mode.Mode(s)
}

// filtersFromMap drops unknown fields and unparsable values.
func filtersFromMap(m map[string][]string) filter.Filters {
	var fs filter.Filters
	for name, values := range m {
		f, err := field.Parse(name)
		if err != nil {
			continue
		}
		for _, v := range values {
			fs.AddRaw(f, v)
		}
	}
	return fs
}

func filtersToMap(fs filter.Filters) map[string][]string {
	out := make(map[string][]string)
	for _, f := range fs.Fields() {
		vals := fs.Get(f)
		ids := make([]string, len(vals))
		for i, v := range vals {
			ids[i] = v.ID()
		}
		out[f.String()] = ids
	}
	return out
}

func normalizedFromQuery(n query.Normalized) NormalizedQuery {
	return NormalizedQuery{
		Cleaned:       n.Cleaned,
		Tokens:        n.Tokens,
		Extracted:     filtersToMap(n.Extracted),
		UnknownTokens: n.UnknownTokens,
	}
}

func searchResultFromEngine(res engine.Result) SearchResult {
	items := make([]Item, len(res.Hits))
	for i := range res.Hits {
		it := res.Hits[i].Item()
		items[i] = Item{
			Slug:             it.Slug,
			Title:            it.Title,
			SKU:              it.SKU,
			Description:      it.Desc,
			CategorySlug:     it.CategorySlug,
			CategoryTitle:    it.CategoryTitle,
			SubcategorySlug:  it.SubcategorySlug,
			SubcategoryTitle: it.SubcategoryTitle,
			ProductType:      it.ProductTypeLabel,
			Attributes:       filtersToMap(it.Attributes),
			Tags:             it.Tags,
			Score:            res.Hits[i].Score(),
		}
	}

	facets := make(map[string][]Facet, len(res.Facets))
	for f, list := range res.Facets {
		out := make([]Facet, len(list))
		for i, fc := range list {
			out[i] = Facet{Value: fc.Value, Label: fc.Label, Count: fc.Count, Selected: fc.Selected}
		}
		facets[f.String()] = out
	}

	return SearchResult{
		Items:      items,
		Facets:     facets,
		Total:      res.Total,
		Normalized: normalizedFromQuery(res.Normalized),
		Filters:    filtersToMap(res.Filters),
	}
}

func taxonomyValues(tax *taxonomy.Taxonomy) map[string][]TaxonomyValue {
	out := make(map[string][]TaxonomyValue)
	for _, f := range field.All() {
		vals := tax.Values(f)
		if len(vals) == 0 {
			continue
		}
		list := make([]TaxonomyValue, len(vals))
		for i, v := range vals {
			list[i] = TaxonomyValue{ID: v.ID, Label: v.Label, Count: v.Count, Aliases: v.Aliases}
		}
		out[f.String()] = list
	}
	return out
}

func snapshotInfo(st snapshot.Stats) SnapshotInfo {
	return SnapshotInfo{
		ID:      st.ID,
		BuiltAt: st.BuiltAt,
		Items:   st.Items,
		Values:  st.Values,
		Tokens:  st.Tokens,
	}
}
