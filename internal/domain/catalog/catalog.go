// Package catalog holds the source catalog tree and the flattened, indexed item records.
package catalog

// Catalog is the source document: category -> subcategory -> item.
// A nil Categories slice after decoding means the "categories" key was missing.
type Catalog struct {
	Categories []Category `json:"categories"`
}

// Category is the top level of the catalog tree.
type Category struct {
	Slug          string        `json:"slug"`
	Title         string        `json:"title"`
	Intro         string        `json:"intro,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory groups items of one kind inside a category.
type Subcategory struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Intro string `json:"intro,omitempty"`
	Range string `json:"range,omitempty"`
	Items []Item `json:"items"`
}

// Item is a single sellable product.
type Item struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ItemCount returns the number of items across the whole tree.
func (c *Catalog) ItemCount() int {
	n := 0
	for i := range c.Categories {
		for j := range c.Categories[i].Subcategories {
			n += len(c.Categories[i].Subcategories[j].Items)
		}
	}
	return n
}
