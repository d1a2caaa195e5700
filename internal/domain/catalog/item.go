package catalog

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
)

// Key identifies an indexed item. The builder assumes keys are unique.
type Key struct {
	CategorySlug    string
	SubcategorySlug string
	Slug            string
}

// IndexedItem is the flattened, pre-analysed record the search engine works on.
// It is created once per catalog item during a build and never mutated.
type IndexedItem struct {
	CategorySlug     string         `json:"categorySlug"`
	CategoryTitle    string         `json:"categoryTitle"`
	SubcategorySlug  string         `json:"subcategorySlug"`
	SubcategoryTitle string         `json:"subcategoryTitle"`
	Slug             string         `json:"slug"`
	Title            string         `json:"title"`
	SKU              string         `json:"sku,omitempty"`
	Desc             string         `json:"desc,omitempty"`
	ProductTypeLabel string         `json:"productType"`
	Attributes       filter.Filters `json:"attributes"`
	Tags             []string       `json:"tags"`
	SearchVector     string         `json:"searchVector"`
}

// Key returns the identity of the item.
func (it *IndexedItem) Key() Key {
	return Key{CategorySlug: it.CategorySlug, SubcategorySlug: it.SubcategorySlug, Slug: it.Slug}
}
