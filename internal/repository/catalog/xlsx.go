package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Column headers of the flat catalog sheet, matched case-insensitively.
const (
	colCategorySlug    = "category_slug"
	colCategory        = "category"
	colCategoryIntro   = "category_intro"
	colSubcategorySlug = "subcategory_slug"
	colSubcategory     = "subcategory"
	colSubcategoryIntr = "subcategory_intro"
	colRange           = "range"
	colSlug            = "slug"
	colTitle           = "title"
	colDescription     = "description"
	colSKU             = "sku"
	colTags            = "tags"
)

var requiredColumns = []string{colCategorySlug, colSubcategorySlug, colSlug, colTitle}

// ParseXLSX reads the first sheet of a workbook with one item per row. Rows are
// grouped into categories and subcategories in order of first appearance.
func ParseXLSX(r io.Reader) (*domcat.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewCatalogError("", "open workbook: "+err.Error())
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewCatalogError("", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.NewCatalogError(sheets[0], "read rows: "+err.Error())
	}
	if len(rows) == 0 {
		return nil, domain.NewCatalogError(sheets[0], "missing header row")
	}

	cols := headerIndex(rows[0])
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, domain.NewCatalogError(sheets[0], "missing column "+name)
		}
	}

	b := newTreeBuilder()
	for i, row := range rows[1:] {
		cell := func(name string) string {
			j, ok := cols[name]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}
		if isBlank(row) {
			continue
		}
		line := fmt.Sprintf("%s!row %d", sheets[0], i+2)
		if cell(colCategorySlug) == "" || cell(colSubcategorySlug) == "" {
			return nil, domain.NewCatalogError(line, "empty category or subcategory slug")
		}

		c := b.category(cell(colCategorySlug), cell(colCategory), cell(colCategoryIntro))
		s := b.subcategory(c, cell(colSubcategorySlug), cell(colSubcategory), cell(colSubcategoryIntr), cell(colRange))
		s.Items = append(s.Items, domcat.Item{
			Slug:        cell(colSlug),
			Title:       cell(colTitle),
			Description: PlainText(cell(colDescription)),
			SKU:         cell(colSKU),
			Tags:        splitTags(cell(colTags)),
		})
	}
	return b.catalog(), nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// treeBuilder assembles the nested catalog from flat rows using slug indexes.
type treeBuilder struct {
	cats   []*domcat.Category
	catIdx map[string]int
	subIdx map[string]map[string]int
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{catIdx: make(map[string]int), subIdx: make(map[string]map[string]int)}
}

func (b *treeBuilder) category(slug, title, intro string) *domcat.Category {
	if i, ok := b.catIdx[slug]; ok {
		c := b.cats[i]
		if c.Title == "" {
			c.Title = title
		}
		if c.Intro == "" {
			c.Intro = PlainText(intro)
		}
		return c
	}
	c := &domcat.Category{Slug: slug, Title: title, Intro: PlainText(intro), Subcategories: []domcat.Subcategory{}}
	b.catIdx[slug] = len(b.cats)
	b.cats = append(b.cats, c)
	b.subIdx[slug] = make(map[string]int)
	return c
}

func (b *treeBuilder) subcategory(c *domcat.Category, slug, title, intro, rng string) *domcat.Subcategory {
	if i, ok := b.subIdx[c.Slug][slug]; ok {
		s := &c.Subcategories[i]
		if s.Title == "" {
			s.Title = title
		}
		if s.Intro == "" {
			s.Intro = PlainText(intro)
		}
		if s.Range == "" {
			s.Range = PlainText(rng)
		}
		return s
	}
	b.subIdx[c.Slug][slug] = len(c.Subcategories)
	c.Subcategories = append(c.Subcategories, domcat.Subcategory{
		Slug: slug, Title: title, Intro: PlainText(intro), Range: PlainText(rng), Items: []domcat.Item{},
	})
	return &c.Subcategories[len(c.Subcategories)-1]
}

func (b *treeBuilder) catalog() *domcat.Catalog {
	out := &domcat.Catalog{Categories: make([]domcat.Category, len(b.cats))}
	for i, c := range b.cats {
		out.Categories[i] = *c
	}
	return out
}
