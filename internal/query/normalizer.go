// Package query turns a free-text query into structured filters and a cleaned token set.
package query

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/pattern"
	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

// Dictionary is the read side of the synonym store.
type Dictionary interface {
	Lookup(key string) []taxonomy.SynonymEntry
}

// Normalized is the structured interpretation of one query.
type Normalized struct {
	Cleaned       string         `json:"cleaned"`
	Tokens        []string       `json:"tokens"`
	Extracted     filter.Filters `json:"extracted"`
	UnknownTokens []string       `json:"unknownTokens"`
}

type hitKey struct {
	field field.Field
	value string
}

type hit struct {
	value  filter.Value
	weight float64
	score  float64
}

// Normalize interprets raw against dict. It never fails: empty or unrecognized
// input yields an empty result. dict may be nil.
func Normalize(raw string, dict Dictionary) Normalized {
	prepared := textnorm.Prepare(raw)
	toks := textnorm.Tokens(prepared)
	matched := make([]bool, len(toks))
	hits := make(map[hitKey]*hit)

	add := func(f field.Field, id string, weight, score float64) {
		v, ok := filter.Parse(f, id)
		if !ok || !f.Valid() {
			return
		}
		k := hitKey{f, v.ID()}
		h, ok := hits[k]
		if !ok {
			hits[k] = &hit{value: v, weight: weight, score: score}
			return
		}
		h.weight += weight
		if score > h.score {
			h.score = score
		}
	}

	for _, m := range pattern.Extract(prepared) {
		add(m.Field, m.Value, m.Weight, 1)
		for i, tok := range toks {
			if tok.Overlaps(m.Start, m.End) {
				matched[i] = true
			}
		}
	}

	words := make([]string, 0, len(toks))
	for i, tok := range toks {
		w := textnorm.TrimPunct(tok.Text)
		if w == "" {
			continue
		}
		words = append(words, w)
		if dict == nil {
			continue
		}
		seen := make(map[hitKey]struct{})
		for _, key := range textnorm.Normalize(w) {
			for _, e := range dict.Lookup(key) {
				k := hitKey{e.Field, e.Value}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				add(e.Field, e.Value, e.Weight, e.Score)
				matched[i] = true
			}
		}
	}

	var unknown []string
	unknownSeen := make(map[string]struct{})
	for i, tok := range toks {
		w := textnorm.TrimPunct(tok.Text)
		if matched[i] || w == "" || textnorm.IsStopWord(w) {
			continue
		}
		if _, dup := unknownSeen[w]; dup {
			continue
		}
		unknownSeen[w] = struct{}{}
		unknown = append(unknown, w)
	}

	extracted := collect(hits)
	return Normalized{
		Cleaned:       cleaned(words, extracted),
		Tokens:        nonNil(words),
		Extracted:     extracted,
		UnknownTokens: nonNil(unknown),
	}
}

// collect orders each field's hits by weight desc, score desc, then id.
func collect(hits map[hitKey]*hit) filter.Filters {
	byField := make(map[field.Field][]*hit)
	for k, h := range hits {
		byField[k.field] = append(byField[k.field], h)
	}
	var out filter.Filters
	for _, f := range field.All() {
		list := byField[f]
		sort.Slice(list, func(i, j int) bool {
			if list[i].weight != list[j].weight {
				return list[i].weight > list[j].weight
			}
			if list[i].score != list[j].score {
				return list[i].score > list[j].score
			}
			return list[i].value.ID() < list[j].value.ID()
		})
		for _, h := range list {
			out.Add(f, h.value)
		}
	}
	return out
}

func cleaned(words []string, extracted filter.Filters) string {
	parts := append([]string(nil), words...)
	for _, f := range extracted.Fields() {
		for _, v := range extracted.Get(f) {
			parts = append(parts, filter.Restate(f, v))
		}
	}
	return strings.Join(parts, " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
