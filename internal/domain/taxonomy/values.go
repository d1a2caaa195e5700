package taxonomy

import (
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

type valueAcc struct {
	label   string
	count   int
	num     *float64
	aliases map[string]struct{}
}

// ValuesBuilder accumulates canonical values and their aliases during a build.
type ValuesBuilder struct {
	vals [field.Count]map[string]*valueAcc
}

// NewValuesBuilder creates an empty builder.
func NewValuesBuilder() *ValuesBuilder {
	b := &ValuesBuilder{}
	for i := range b.vals {
		b.vals[i] = make(map[string]*valueAcc)
	}
	return b
}

// Observe counts one occurrence of (f, id). The first non-empty label wins.
func (b *ValuesBuilder) Observe(f field.Field, id, label string, num *float64) {
	a := b.get(f, id)
	if a == nil {
		return
	}
	a.count++
	if a.label == "" {
		a.label = label
	}
	if a.num == nil && num != nil {
		n := *num
		a.num = &n
	}
}

// Alias records a raw surface form of (f, id) without counting an occurrence.
func (b *ValuesBuilder) Alias(f field.Field, id, alias string) {
	if alias == "" {
		return
	}
	if a := b.get(f, id); a != nil {
		a.aliases[alias] = struct{}{}
	}
}

func (b *ValuesBuilder) get(f field.Field, id string) *valueAcc {
	if !f.Valid() || id == "" {
		return nil
	}
	m := b.vals[f.Index()]
	a, ok := m[id]
	if !ok {
		a = &valueAcc{aliases: make(map[string]struct{})}
		m[id] = a
	}
	return a
}

// Build freezes the accumulated values into a Taxonomy.
func (b *ValuesBuilder) Build() *Taxonomy {
	values := make(map[field.Field][]CanonicalValue)
	for i := range b.vals {
		if len(b.vals[i]) == 0 {
			continue
		}
		f := field.Field(i + 1)
		list := make([]CanonicalValue, 0, len(b.vals[i]))
		for id, a := range b.vals[i] {
			aliases := make([]string, 0, len(a.aliases))
			for s := range a.aliases {
				aliases = append(aliases, s)
			}
			sort.Strings(aliases)
			label := a.label
			if label == "" {
				label = id
			}
			list = append(list, CanonicalValue{
				Field:        f,
				ID:           id,
				Label:        label,
				Count:        a.count,
				NumericValue: a.num,
				Aliases:      aliases,
			})
		}
		values[f] = list
	}
	return NewTaxonomy(values)
}
