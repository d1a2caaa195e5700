package query

import (
	"testing"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

type fakeDict map[string][]taxonomy.SynonymEntry

func (d fakeDict) Lookup(key string) []taxonomy.SynonymEntry { return d[key] }

func ids(vals []filter.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.ID()
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize_DiameterForms(t *testing.T) {
	for _, q := range []string{"арматура ф12", "арматура d-12", "арматура 12мм", "D12", "Ф 12"} {
		t.Run(q, func(t *testing.T) {
			n := Normalize(q, nil)
			if !n.Extracted.Contains(field.DiameterMM, filter.Number(12)) {
				t.Errorf("diameter_mm = %v, want 12", ids(n.Extracted.Get(field.DiameterMM)))
			}
		})
	}
}

func TestNormalize_ClassExample(t *testing.T) {
	n := Normalize("арматура а500", nil)
	if got := ids(n.Extracted.Get(field.Class)); !sameStrings(got, []string{"A500"}) {
		t.Errorf("class = %v, want [A500]", got)
	}
	if !sameStrings(n.UnknownTokens, []string{"арматура"}) {
		t.Errorf("unknown = %v", n.UnknownTokens)
	}
}

func TestNormalize_DictionaryHits(t *testing.T) {
	dict := fakeDict{
		"арматура": {
			{Field: field.ProductType, Value: "armatura", Weight: 3, Score: 1, Source: taxonomy.SourceCatalog},
			{Field: field.ProductType, Value: "setka", Weight: 0.05, Score: 0.02, Source: taxonomy.SourceCatalog},
		},
		"рифлен": {
			{Field: field.Surface, Value: "ribbed", Weight: 10, Score: 1, Source: taxonomy.SourceManual},
		},
	}
	n := Normalize("Арматура рифленая для фундамента", dict)

	if got := ids(n.Extracted.Get(field.ProductType)); !sameStrings(got, []string{"armatura", "setka"}) {
		t.Errorf("product_type = %v", got)
	}
	if got := ids(n.Extracted.Get(field.Surface)); !sameStrings(got, []string{"ribbed"}) {
		t.Errorf("surface = %v", got)
	}
	if !sameStrings(n.UnknownTokens, []string{"фундамента"}) {
		t.Errorf("unknown = %v", n.UnknownTokens)
	}
	if !sameStrings(n.Tokens, []string{"арматура", "рифленая", "для", "фундамента"}) {
		t.Errorf("tokens = %v", n.Tokens)
	}
}

func TestNormalize_RepeatedValuesAccumulate(t *testing.T) {
	dict := fakeDict{
		"57x3": {{Field: field.Section, Value: "57x3", Weight: 0.9, Score: 1, Source: taxonomy.SourcePattern}},
	}
	// 57x3 is hit by the pattern and the dictionary, 40x4 by the pattern only.
	n := Normalize("труба 40x4 57x3", dict)
	got := ids(n.Extracted.Get(field.Section))
	if !sameStrings(got, []string{"57x3", "40x4"}) {
		t.Errorf("section order = %v, want heavier value first", got)
	}
}

func TestNormalize_TieBreakLexical(t *testing.T) {
	n := Normalize("уголок 50x50x5 40x40x4", nil)
	if got := ids(n.Extracted.Get(field.Section)); !sameStrings(got, []string{"40x40x4", "50x50x5"}) {
		t.Errorf("section = %v", got)
	}
}

func TestNormalize_Cleaned(t *testing.T) {
	n := Normalize("Арматура ф12 А500С", nil)
	want := "арматура ф12 а500с a500c d12"
	if n.Cleaned != want {
		t.Errorf("cleaned = %q, want %q", n.Cleaned, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, q := range []string{"", "   ", "«»()"} {
		n := Normalize(q, fakeDict{})
		if n.Cleaned != "" || len(n.Tokens) != 0 || !n.Extracted.IsEmpty() || len(n.UnknownTokens) != 0 {
			t.Errorf("Normalize(%q) = %+v, want empty", q, n)
		}
	}
}

func TestNormalize_UnknownDisjointFromMatched(t *testing.T) {
	dict := fakeDict{
		"лист": {{Field: field.Profile, Value: "flat", Weight: 1, Score: 1, Source: taxonomy.SourceCatalog}},
	}
	queries := []string{
		"лист 09г2с толщина 4 и всякое",
		"труба 40x20x2 гост 8732-78 зеленая",
		"саморез по дереву",
		"ф12, ф14 а400 и а500с",
	}
	for _, q := range queries {
		n := Normalize(q, dict)
		for _, tok := range textnorm.Tokens(textnorm.Prepare(q)) {
			w := textnorm.TrimPunct(tok.Text)
			unknown := false
			for _, u := range n.UnknownTokens {
				if u == w {
					unknown = true
				}
			}
			if unknown && textnorm.IsStopWord(w) {
				t.Errorf("%q: stop word %q reported as unknown", q, w)
			}
		}
		for _, u := range n.UnknownTokens {
			if len(dict.Lookup(u)) > 0 {
				t.Errorf("%q: dictionary token %q reported as unknown", q, u)
			}
		}
	}

	n := Normalize("лист 09г2с толщина 4 и всякое", dict)
	if !sameStrings(n.UnknownTokens, []string{"всякое"}) {
		t.Errorf("unknown = %v, want [всякое]", n.UnknownTokens)
	}
}

func TestNormalize_RepeatedHintWordsExplained(t *testing.T) {
	tests := []struct {
		q     string
		field field.Field
		want  string
	}{
		{"лист гладкий лист", field.Profile, "flat"},
		{"труба гост 8732 труба", field.Profile, "pipe"},
		{"рифленая арматура рифленая", field.Surface, "ribbed"},
	}
	for _, tt := range tests {
		n := Normalize(tt.q, nil)
		if len(n.UnknownTokens) != 0 {
			t.Errorf("%q: unknown = %v, want none", tt.q, n.UnknownTokens)
		}
		if got := ids(n.Extracted.Get(tt.field)); !sameStrings(got, []string{tt.want}) {
			t.Errorf("%q: %s = %v, want [%s]", tt.q, tt.field, got, tt.want)
		}
	}
}
