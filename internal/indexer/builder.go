// Package indexer mines a catalog into a taxonomy, a synonym dictionary and the
// flattened item list the search engine runs on.
package indexer

import (
	"strings"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/pattern"
	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

// ContextWeight is the synonym weight linking every context word to the item's product type.
const ContextWeight = 0.05

// Result is the output of one build. All parts are frozen.
type Result struct {
	Taxonomy *taxonomy.Taxonomy
	// Generated is the dictionary mined from the catalog, before curated overrides.
	Generated *taxonomy.Dictionary
	// Dictionary is Generated with curated overrides merged in. Request-time lookups use it.
	Dictionary *taxonomy.Dictionary
	Items      []catalog.IndexedItem
}

// Build indexes the whole catalog. manual may be nil.
// A catalog without a categories list is rejected with domain.ErrMalformedCatalog.
func Build(cat *catalog.Catalog, manual taxonomy.ManualOverrides) (*Result, error) {
	if cat == nil || cat.Categories == nil {
		return nil, domain.NewCatalogError("categories", "missing categories list")
	}

	values := taxonomy.NewValuesBuilder()
	dict := taxonomy.NewDictionaryBuilder()
	items := make([]catalog.IndexedItem, 0, cat.ItemCount())

	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		for si := range c.Subcategories {
			s := &c.Subcategories[si]
			for ii := range s.Items {
				items = append(items, indexItem(c, s, &s.Items[ii], values, dict))
			}
		}
	}

	generated := dict.Entries()
	return &Result{
		Taxonomy:   values.Build(),
		Generated:  taxonomy.NewDictionary(generated),
		Dictionary: taxonomy.NewDictionary(MergeManual(generated, manual)),
		Items:      items,
	}, nil
}

func indexItem(
	c *catalog.Category,
	s *catalog.Subcategory,
	it *catalog.Item,
	values *taxonomy.ValuesBuilder,
	dict *taxonomy.DictionaryBuilder,
) catalog.IndexedItem {
	ptLabel, ptID := ProductType(it.Title, it.Slug)

	// Counts are per item: a value repeated in one item's text counts once.
	seen := make(map[pairKey]struct{})
	observe := func(f field.Field, id, label string, num *float64) {
		pk := pairKey{f, id}
		if _, ok := seen[pk]; ok {
			return
		}
		seen[pk] = struct{}{}
		values.Observe(f, id, label, num)
	}

	observe(field.ProductType, ptID, ptLabel, nil)
	values.Alias(field.ProductType, ptID, ptLabel)
	observe(field.Category, c.Slug, c.Title, nil)
	observe(field.Subcategory, s.Slug, s.Title, nil)

	ctx := textnorm.Prepare(joinText(c.Title, c.Intro, s.Title, s.Intro, s.Range, it.Title, it.Description, it.SKU))
	for _, m := range pattern.Extract(ctx) {
		observe(m.Field, m.Value, m.Label, m.Num)
		values.Alias(m.Field, m.Value, m.Span)
		for _, key := range textnorm.Normalize(m.Span) {
			dict.Add(key, m.Field, m.Value, m.Weight, taxonomy.SourcePattern)
		}
	}

	keys := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(ctx) {
		w := textnorm.TrimPunct(tok.Text)
		if textnorm.IsStopWord(w) {
			continue
		}
		for _, key := range textnorm.Normalize(w) {
			if _, dup := keys[key]; dup {
				continue
			}
			keys[key] = struct{}{}
			dict.Add(key, field.ProductType, ptID, ContextWeight, taxonomy.SourceCatalog)
		}
	}

	attrs := itemAttributes(c, s, it, ptID)
	tags := itemTags(it, ptLabel, attrs)
	return catalog.IndexedItem{
		CategorySlug:     c.Slug,
		CategoryTitle:    c.Title,
		SubcategorySlug:  s.Slug,
		SubcategoryTitle: s.Title,
		Slug:             it.Slug,
		Title:            it.Title,
		SKU:              it.SKU,
		Desc:             it.Description,
		ProductTypeLabel: ptLabel,
		Attributes:       attrs,
		Tags:             tags,
		SearchVector:     strings.Join(tags, " "),
	}
}

// itemAttributes extracts the item's own structured values. Category and subcategory
// intros are left out: they describe the whole group, not the item.
func itemAttributes(c *catalog.Category, s *catalog.Subcategory, it *catalog.Item, ptID string) filter.Filters {
	var attrs filter.Filters
	addText := func(f field.Field, id string) {
		if id != "" {
			attrs.Add(f, filter.Text(id))
		}
	}
	addText(field.ProductType, ptID)
	addText(field.Category, c.Slug)
	addText(field.Subcategory, s.Slug)

	text := textnorm.Prepare(joinText(s.Title, it.Title, it.Description, it.SKU))
	for _, m := range pattern.Extract(text) {
		if m.Num != nil {
			attrs.Add(m.Field, filter.Number(*m.Num))
			continue
		}
		attrs.Add(m.Field, filter.Text(m.Value))
	}
	return attrs
}

// itemTags combines curated tags with the product label and restated attribute values.
func itemTags(it *catalog.Item, ptLabel string, attrs filter.Filters) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	for _, t := range it.Tags {
		add(strings.ToLower(t))
	}
	add(ptLabel)
	for _, f := range attrs.Fields() {
		switch f {
		case field.ProductType, field.Category, field.Subcategory:
			continue
		}
		for _, v := range attrs.Get(f) {
			add(filter.Restate(f, v))
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

func joinText(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
