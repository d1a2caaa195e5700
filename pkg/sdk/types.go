package catalogsearch

import "time"

// SortMode controls result ordering.
type SortMode string

// Sort mode constants.
const (
	SortDefault   SortMode = "default"
	SortRelevance SortMode = "relevance"
)

// SearchQuery is one search call. Filters are keyed by field name
// (product_type, diameter_mm, class, section, ...); unknown fields are ignored.
type SearchQuery struct {
	Query    string
	Filters  map[string][]string
	Sort     SortMode
	Page     int
	PageSize int
}

// Item is a ranked catalog item.
type Item struct {
	Slug             string
	Title            string
	SKU              string
	Description      string
	CategorySlug     string
	CategoryTitle    string
	SubcategorySlug  string
	SubcategoryTitle string
	ProductType      string
	Attributes       map[string][]string
	Tags             []string
	Score            float64
}

// Facet is one value of a facet field with its count over the filtered set.
type Facet struct {
	Value    string
	Label    string
	Count    int
	Selected bool
}

// NormalizedQuery is the structured reading of a query.
type NormalizedQuery struct {
	Cleaned       string
	Tokens        []string
	Extracted     map[string][]string
	UnknownTokens []string
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Items      []Item
	Facets     map[string][]Facet
	Total      int
	Normalized NormalizedQuery
	// Filters is the union of the extracted and the explicit filters that was applied.
	Filters map[string][]string
}

// TaxonomyValue is a canonical attribute value mined from the catalog.
type TaxonomyValue struct {
	ID      string
	Label   string
	Count   int
	Aliases []string
}

// SnapshotInfo describes the published index.
type SnapshotInfo struct {
	ID      string
	BuiltAt time.Time
	Items   int
	Values  int
	Tokens  int
}
