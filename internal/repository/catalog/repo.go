// Package catalog loads catalog sources (JSON or XLSX) and the manual synonym overrides.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
)

// Format is the catalog source encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Config locates the catalog sources.
type Config struct {
	Path       string
	Format     Format // empty means detect by extension
	ManualPath string // empty or missing file means no overrides
}

// Repo implements usecase/index.CatalogSource on local files.
type Repo struct {
	cfg Config
}

// New creates a catalog repository.
func New(cfg Config) *Repo {
	return &Repo{cfg: cfg}
}

// Load reads, cleans and validates the catalog.
func (r *Repo) Load(ctx context.Context) (*domcat.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	data, err := os.ReadFile(filepath.Clean(r.cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", r.cfg.Path, err)
	}

	var cat *domcat.Catalog
	switch r.format() {
	case FormatXLSX:
		cat, err = ParseXLSX(bytes.NewReader(data))
	case FormatJSON:
		cat, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", r.cfg.Format)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadManual reads the overrides document. A missing file yields no overrides.
// Entries naming an unknown field are dropped and counted in skipped.
func (r *Repo) LoadManual(ctx context.Context) (taxonomy.ManualOverrides, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("load manual overrides: %w", err)
	}
	if r.cfg.ManualPath == "" {
		return taxonomy.ManualOverrides{}, 0, nil
	}
	data, err := os.ReadFile(filepath.Clean(r.cfg.ManualPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return taxonomy.ManualOverrides{}, 0, nil
		}
		return nil, 0, fmt.Errorf("read manual overrides %s: %w", r.cfg.ManualPath, err)
	}
	return ParseManual(data)
}

func (r *Repo) format() Format {
	if r.cfg.Format != "" {
		return r.cfg.Format
	}
	if strings.EqualFold(filepath.Ext(r.cfg.Path), ".xlsx") {
		return FormatXLSX
	}
	return FormatJSON
}

// ParseJSON decodes a catalog document and strips HTML from free-text fields.
func ParseJSON(data []byte) (*domcat.Catalog, error) {
	var cat domcat.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, domain.NewCatalogError("", err.Error())
	}
	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		c.Intro = PlainText(c.Intro)
		for si := range c.Subcategories {
			s := &c.Subcategories[si]
			s.Intro = PlainText(s.Intro)
			s.Range = PlainText(s.Range)
			for ii := range s.Items {
				s.Items[ii].Description = PlainText(s.Items[ii].Description)
			}
		}
	}
	return &cat, nil
}

// Validate rejects catalogs the builder cannot index: a missing categories list,
// empty slugs or titles, and duplicate item keys.
func Validate(cat *domcat.Catalog) error {
	if cat == nil || cat.Categories == nil {
		return domain.NewCatalogError("categories", "missing categories list")
	}
	seen := make(map[domcat.Key]struct{}, cat.ItemCount())
	for ci := range cat.Categories {
		c := &cat.Categories[ci]
		cpath := fmt.Sprintf("categories[%d]", ci)
		if c.Slug == "" {
			return domain.NewCatalogError(cpath+".slug", "empty slug")
		}
		for si := range c.Subcategories {
			s := &c.Subcategories[si]
			spath := fmt.Sprintf("%s.subcategories[%d]", cpath, si)
			if s.Slug == "" {
				return domain.NewCatalogError(spath+".slug", "empty slug")
			}
			for ii := range s.Items {
				it := &s.Items[ii]
				ipath := fmt.Sprintf("%s.items[%d]", spath, ii)
				if it.Slug == "" {
					return domain.NewCatalogError(ipath+".slug", "empty slug")
				}
				if strings.TrimSpace(it.Title) == "" {
					return domain.NewCatalogError(ipath+".title", "empty title")
				}
				k := domcat.Key{CategorySlug: c.Slug, SubcategorySlug: s.Slug, Slug: it.Slug}
				if _, dup := seen[k]; dup {
					return domain.NewCatalogError(ipath, "duplicate item "+c.Slug+"/"+s.Slug+"/"+it.Slug)
				}
				seen[k] = struct{}{}
			}
		}
	}
	return nil
}

type manualEntryDTO struct {
	Field  string          `json:"field"`
	Value  json.RawMessage `json:"value"`
	Weight float64         `json:"weight,omitempty"`
}

// ParseManual decodes the overrides document. Values may be strings or numbers.
func ParseManual(data []byte) (taxonomy.ManualOverrides, int, error) {
	var raw map[string][]manualEntryDTO
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("parse manual overrides: %w", err)
	}
	out := make(taxonomy.ManualOverrides, len(raw))
	skipped := 0
	for token, entries := range raw {
		for _, dto := range entries {
			f, err := field.Parse(dto.Field)
			if err != nil {
				skipped++
				continue
			}
			value, ok := rawValue(dto.Value)
			if !ok {
				skipped++
				continue
			}
			out[token] = append(out[token], taxonomy.ManualEntry{Field: f, Value: value, Weight: dto.Weight})
		}
	}
	return out, skipped, nil
}

func rawValue(msg json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, s != ""
	}
	var n float64
	if err := json.Unmarshal(msg, &n); err == nil {
		return filter.FormatNumber(n), true
	}
	return "", false
}
