// Package engine ranks indexed catalog items against a query and explicit filters.
package engine

import (
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/query"
)

// Baseline scoring for an empty query: every item qualifies, earlier items slightly first.
const (
	baselineScore = 0.5
	baselineStep  = 1e-6
)

// Structured bonuses subtracted from the fuzzy score when an item carries a value the
// query implies. Explicitly chosen filters earn more than values inferred from text.
var (
	queryBonus = bonusTable(map[field.Field]float64{
		field.DiameterMM:  0.6,
		field.Class:       0.5,
		field.ProductType: 0.5,
		field.Surface:     0.3,
		field.Profile:     0.2,
		field.SteelGrade:  0.2,
	})
	explicitBonus = bonusTable(map[field.Field]float64{
		field.DiameterMM:  0.8,
		field.Class:       0.6,
		field.ProductType: 0.6,
		field.Surface:     0.4,
		field.Profile:     0.4,
		field.SteelGrade:  0.3,
		field.GOST:        0.3,
	})
)

func bonusTable(m map[field.Field]float64) [field.Count]float64 {
	var t [field.Count]float64
	for f, b := range m {
		t[f.Index()] = b
	}
	return t
}

// Engine is an immutable search index over one build. It is safe for concurrent use.
type Engine struct {
	items    []catalog.IndexedItem
	docs     []matchDoc
	dict     query.Dictionary
	taxonomy *taxonomy.Taxonomy
}

// Result is the outcome of one search.
type Result struct {
	Hits       []result.Result
	Facets     result.Facets
	Total      int
	Normalized query.Normalized
	// Filters is the union of the extracted and the explicit filters that was applied.
	Filters filter.Filters
}

// New indexes items for fuzzy matching. The engine keeps references to all arguments,
// which must not be modified afterwards.
func New(items []catalog.IndexedItem, dict *taxonomy.Dictionary, tax *taxonomy.Taxonomy) *Engine {
	docs := make([]matchDoc, len(items))
	for i := range items {
		docs[i] = newMatchDoc(&items[i])
	}
	return &Engine{items: items, docs: docs, dict: dict, taxonomy: tax}
}

// Size returns the number of indexed items.
func (e *Engine) Size() int { return len(e.items) }

// Normalize interprets a query against the engine's dictionary.
func (e *Engine) Normalize(q string) query.Normalized {
	return query.Normalize(q, e.dict)
}

type candidate struct {
	idx   int
	score float64
}

// Search runs a query. Page size is expected to be clamped by the caller.
func (e *Engine) Search(req request.Request) Result {
	norm := e.Normalize(req.Query())
	explicit := req.Filters()
	merged := filter.Union(norm.Extracted, explicit)

	cands := e.match(norm.Cleaned)
	filtered := cands[:0]
	for _, c := range cands {
		it := &e.items[c.idx]
		if !passes(it, merged) {
			continue
		}
		bonus := structuredBonus(it, norm.Extracted, queryBonus) + structuredBonus(it, explicit, explicitBonus)
		c.score = max(0, c.score-bonus)
		filtered = append(filtered, c)
	}

	e.order(filtered, req.Sort())

	return Result{
		Hits:       e.page(filtered, req.Page(), req.PageSize()),
		Facets:     e.facets(filtered, merged),
		Total:      len(filtered),
		Normalized: norm,
		Filters:    merged,
	}
}

// match returns fuzzy candidates in catalog order with their distance score
// (0 = every query token matched exactly in the title).
func (e *Engine) match(cleaned string) []candidate {
	qt := queryTokens(cleaned)
	out := make([]candidate, 0, len(e.items))
	if len(qt) == 0 {
		for i := range e.items {
			out = append(out, candidate{idx: i, score: baselineScore + float64(i)*baselineStep})
		}
		return out
	}
	norm := float64(len(qt)) * maxFieldWeight
	for i := range e.docs {
		sum := e.docs[i].score(qt)
		if sum <= 0 {
			continue
		}
		out = append(out, candidate{idx: i, score: 1 - sum/norm})
	}
	return out
}

// passes reports whether the item has at least one value of every constrained field.
func passes(it *catalog.IndexedItem, fs filter.Filters) bool {
	for _, f := range fs.Fields() {
		if !it.Attributes.Overlaps(f, fs.Get(f)) {
			return false
		}
	}
	return true
}

func structuredBonus(it *catalog.IndexedItem, fs filter.Filters, table [field.Count]float64) float64 {
	bonus := 0.0
	for _, f := range fs.Fields() {
		b := table[f.Index()]
		if b == 0 {
			continue
		}
		if it.Attributes.Overlaps(f, fs.Get(f)) {
			bonus += b
		}
	}
	return bonus
}

func (e *Engine) order(cands []candidate, m mode.Mode) {
	if m == mode.Relevance {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].score < cands[j].score })
		return
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score < cands[j].score
		}
		return e.items[cands[i].idx].Title < e.items[cands[j].idx].Title
	})
}

func (e *Engine) page(cands []candidate, page, size int) []result.Result {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	// Compare page counts before multiplying so huge page numbers cannot overflow.
	if page-1 >= (len(cands)+size-1)/size {
		return []result.Result{}
	}
	start := (page - 1) * size
	end := min(start+size, len(cands))
	out := make([]result.Result, 0, end-start)
	for _, c := range cands[start:end] {
		out = append(out, result.New(&e.items[c.idx], c.score))
	}
	return out
}
