package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

// Per-field weights of the fuzzy matcher.
const (
	weightTitle       = 1.0
	weightVector      = 0.8
	weightSubcategory = 0.7
	weightCategory    = 0.4
	weightSKU         = 0.4

	maxFieldWeight = weightTitle
)

const (
	// prefixSimilarity is awarded when the query token is a prefix of an item token.
	prefixSimilarity = 0.9
	minPrefixRunes   = 3
	// minSimilarity is the edit-distance similarity below which tokens do not match.
	minSimilarity = 0.67
)

type weightedTokens struct {
	weight float64
	tokens []string
}

// matchDoc is the pre-tokenized view of an item the fuzzy matcher scans.
type matchDoc struct {
	fields []weightedTokens
}

func newMatchDoc(it *catalog.IndexedItem) matchDoc {
	return matchDoc{fields: []weightedTokens{
		{weightTitle, foldTokens(it.Title)},
		{weightVector, foldTokens(it.SearchVector)},
		{weightSubcategory, foldTokens(it.SubcategoryTitle)},
		{weightCategory, foldTokens(it.CategoryTitle)},
		{weightSKU, foldTokens(it.SKU)},
	}}
}

// score returns the summed best weighted similarity of every query token.
func (d *matchDoc) score(query []string) float64 {
	sum := 0.0
	for _, q := range query {
		best := 0.0
		for _, f := range d.fields {
			for _, t := range f.tokens {
				if s := f.weight * similarity(q, t); s > best {
					best = s
				}
			}
		}
		sum += best
	}
	return sum
}

// similarity compares two folded tokens on a 0..1 scale.
func similarity(q, t string) float64 {
	if q == t {
		return 1
	}
	ql, tl := utf8.RuneCountInString(q), utf8.RuneCountInString(t)
	if ql >= minPrefixRunes && strings.HasPrefix(t, q) {
		return prefixSimilarity
	}
	longest := max(ql, tl)
	if longest == 0 {
		return 0
	}
	// The distance is at least the length difference; skip hopeless pairs early.
	if 1-float64(abs(ql-tl))/float64(longest) < minSimilarity {
		return 0
	}
	sim := 1 - float64(levenshtein.ComputeDistance(q, t))/float64(longest)
	if sim < minSimilarity {
		return 0
	}
	return sim
}

// foldTokens splits text into distinct folded tokens.
func foldTokens(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(textnorm.Prepare(text)) {
		f := textnorm.Fold(tok.Text)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// queryTokens folds the cleaned query and drops stop words.
func queryTokens(cleaned string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(cleaned) {
		if textnorm.IsStopWord(tok.Text) {
			continue
		}
		f := textnorm.Fold(tok.Text)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
