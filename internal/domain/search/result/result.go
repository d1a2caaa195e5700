package result

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

// Result is a single search hit. Lower scores rank higher.
type Result struct {
	item  *catalog.IndexedItem
	score float64
}

// New creates a search result.
func New(item *catalog.IndexedItem, score float64) Result {
	return Result{item: item, score: score}
}

// Item returns the matched record. It must not be modified.
func (r *Result) Item() *catalog.IndexedItem { return r.item }

// Score returns the ranking score; 0 is a perfect match.
func (r *Result) Score() float64 { return r.score }

// Facet is one aggregated value of a field across the filtered result set.
type Facet struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected,omitempty"`
}

// Facets holds facet lists for every field that has at least one value.
type Facets map[field.Field][]Facet
