package indexer

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/catalogsearch/internal/textnorm"
)

var productTypeStops = map[string]struct{}{"от": {}, "до": {}, "по": {}}

// ProductType derives the product-type label and canonical id of an item.
// The label is the leading title words up to a range preposition or the first word
// holding a digit. Without such words it falls back to the leading non-numeric slug
// segments, and finally to the raw slug.
func ProductType(title, slug string) (label, id string) {
	var words []string
	for _, tok := range textnorm.Tokens(textnorm.Prepare(title)) {
		w := textnorm.TrimPunct(tok.Text)
		if textnorm.Fold(w) == "" {
			continue
		}
		if _, stop := productTypeStops[w]; stop || hasDigit(w) {
			break
		}
		words = append(words, w)
	}
	label = strings.Join(words, " ")
	if label == "" {
		label = slugPrefix(slug)
	}
	if label == "" {
		label = slug
	}
	return label, textnorm.Slugify(label)
}

func slugPrefix(slug string) string {
	var segs []string
	for _, s := range strings.Split(slug, "-") {
		if s == "" {
			continue
		}
		if hasDigit(s) {
			break
		}
		segs = append(segs, s)
	}
	return strings.Join(segs, " ")
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
