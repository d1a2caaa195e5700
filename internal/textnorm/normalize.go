// Package textnorm canonicalizes mixed Cyrillic/Latin catalog text into comparable keys.
package textnorm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minStemRunes is the shortest stem left after stripping a suffix.
const minStemRunes = 3

// suffixes are Russian case/number endings. Cyrillic "х" is written as Latin "x"
// because Fold has already rewritten it by the time stemming runs.
var suffixes = []string{
	"иями", "ями", "ами", "ого", "его", "ому", "ему", "ыми", "ими", "иеся",
	"ией", "ой", "ей", "ий", "ый", "ая", "яя", "ое", "ее", "ые", "ие",
	"ов", "ев", "ам", "ям", "аx", "яx", "иx", "ыx", "ом", "ем", "ую", "юю",
	"а", "я", "ы", "и", "у", "ю", "е", "о", "ь",
}

// Normalize returns the distinct lookup keys for a raw token, in order:
// the folded form, its Latin transliteration and its stem. Empty candidates are dropped.
func Normalize(raw string) []string {
	base := Fold(raw)
	if base == "" {
		return nil
	}
	out := []string{base}
	add := func(s string) {
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}
	add(Transliterate(base))
	if stem, ok := Stem(base); ok {
		add(stem)
	}
	return out
}

// homoglyphs maps Latin letters to the Cyrillic letters they are typed in place of.
var homoglyphs = map[rune]rune{
	'a': 'а', 'c': 'с', 'e': 'е', 'k': 'к', 'o': 'о', 'p': 'р', 'y': 'у',
}

// Fold lower-cases raw, folds "ё" to "е", folds "×" and Cyrillic "х" to Latin "x"
// and drops every character outside [a-z а-я 0-9]. In a token with at least as many
// Cyrillic as Latin letters, Latin look-alikes are rewritten to Cyrillic, so
// "aрматура" typed with a Latin "a" folds to "арматура". "x" stays Latin.
func Fold(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(norm.NFC.String(raw))
	out := make([]rune, 0, len(s))
	cyr, lat := 0, 0
	for _, r := range s {
		switch {
		case r == 'ё':
			out = append(out, 'е')
			cyr++
		case r == '×' || r == 'х':
			out = append(out, 'x')
		case r >= 'а' && r <= 'я':
			out = append(out, r)
			cyr++
		case r >= 'a' && r <= 'z':
			out = append(out, r)
			if r != 'x' {
				lat++
			}
		case r >= '0' && r <= '9':
			out = append(out, r)
		}
	}
	if cyr > 0 && lat > 0 && cyr >= lat {
		for i, r := range out {
			if c, ok := homoglyphs[r]; ok {
				out[i] = c
			}
		}
	}
	return string(out)
}

// Stem strips the longest matching suffix when at least minStemRunes runes remain.
// The input is expected to be folded already.
func Stem(s string) (string, bool) {
	best, bestRunes := "", 0
	total := utf8.RuneCountInString(s)
	for _, suf := range suffixes {
		n := utf8.RuneCountInString(suf)
		if n <= bestRunes || !strings.HasSuffix(s, suf) || total-n < minStemRunes {
			continue
		}
		best, bestRunes = suf, n
	}
	if best == "" {
		return "", false
	}
	return s[:len(s)-len(best)], true
}
