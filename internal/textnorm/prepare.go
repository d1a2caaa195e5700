package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is a whitespace-delimited piece of prepared text with its byte span.
type Token struct {
	Text  string
	Start int
	End   int
}

// Overlaps reports whether the token intersects the half-open byte span [start, end).
func (t Token) Overlaps(start, end int) bool {
	return t.Start < end && start < t.End
}

// Prepare lower-cases text and softens punctuation for pattern matching:
// "ё" -> "е", brackets and quotes -> spaces, en/em dashes -> "-", "×" -> "x",
// whitespace runs collapsed.
func Prepare(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		switch r {
		case 'ё':
			r = 'е'
		case '(', ')', '[', ']', '{', '}', '"', '\'', '`', '«', '»', '“', '”', '„', '‘', '’':
			r = ' '
		case '–', '—', '−', '‐', '‑':
			r = '-'
		case '×':
			r = 'x'
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens splits prepared text on single spaces and records byte offsets.
func Tokens(prepared string) []Token {
	var out []Token
	start := -1
	for i := 0; i < len(prepared); i++ {
		if prepared[i] == ' ' {
			if start >= 0 {
				out = append(out, Token{Text: prepared[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Token{Text: prepared[start:], Start: start, End: len(prepared)})
	}
	return out
}

// TrimPunct strips sentence punctuation from both ends of a token.
func TrimPunct(s string) string {
	return strings.Trim(s, ".,;:!?/\\|*+")
}
