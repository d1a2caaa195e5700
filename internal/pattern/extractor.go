// Package pattern recognizes domain attributes (diameters, classes, sections, steel
// grades, standards, surface and profile hints) in prepared catalog or query text.
package pattern

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
)

// Recognizer confidence weights. They double as synonym weights at build time and
// as multiplicative match weights at query time.
const (
	WeightDiameterSymbol = 1.0
	WeightDiameterPrefix = 0.8
	WeightDiameterUnit   = 0.6
	WeightClass          = 1.0
	WeightSection        = 0.9
	WeightSteelGrade     = 0.8
	WeightGOST           = 1.0
	WeightThickness      = 0.7
	WeightSectionWall    = 0.5
	WeightSurface        = 0.7
	WeightProfileRound   = 0.6
	WeightProfileAngle   = 0.6
	WeightProfileFlat    = 0.4
	WeightProfilePipe    = 0.3
)

// Match is one recognized attribute occurrence.
type Match struct {
	Field  field.Field
	Value  string
	Label  string
	Num    *float64
	Span   string
	Start  int
	End    int
	Weight float64
	Rule   string
}

const (
	num  = `(\d+(?:[.,]\d+)?)`
	unit = `(?:\s?(?:мм|mm))?`
	sep  = `\s?[xх]\s?`
)

var (
	reDiameterSymbol = regexp.MustCompile(`(?:ф|f|⌀|ø|∅)\s?` + num + unit)
	reDiameterPrefix = regexp.MustCompile(`d-?\s?` + num + unit)
	reDiameterUnit   = regexp.MustCompile(num + `(?:мм|mm)`)
	reClass          = regexp.MustCompile(`(?:a|а)[- ]?(\d{3})(с|c)?`)
	reSection        = regexp.MustCompile(num + sep + num + `(?:` + sep + num + `)?` + unit)
	reSteelSt        = regexp.MustCompile(`ст\.?\s?(\d{1,2})([а-яa-z]{1,2})?`)
	reSteelAlloy     = regexp.MustCompile(`(\d{2})\s?(г|g)\s?(\d{1,2})\s?(с|c)`)
	reSteelStruct    = regexp.MustCompile(`(c|s|с)(\d{3})(с|c)?`)
	reGOST           = regexp.MustCompile(`(?:гост|gost)\s?-?\s?(\d{3,5})(?:-(\d{4}|\d{2}))?`)
	reThickness      = regexp.MustCompile(`(?:толщиной|толщина|толщ\.?|t=|s=)\s?` + num + unit)
)

type hintRule struct {
	needles []string
	value   string
	label   string
	weight  float64
}

// surfaceRules are tried in order; the first rule with any needle present wins.
var surfaceRules = []hintRule{
	{needles: []string{"гладк", "smooth"}, value: "smooth", label: "гладкая", weight: WeightSurface},
	{needles: []string{"рифлен", "профилиров", "ribbed"}, value: "ribbed", label: "рифлёная", weight: WeightSurface},
}

// profileRules are independent; several may fire on the same text.
var profileRules = []hintRule{
	{needles: []string{"кругл", "круг"}, value: "round", label: "круг", weight: WeightProfileRound},
	{needles: []string{"уголок", "уголк"}, value: "angle", label: "уголок", weight: WeightProfileAngle},
	{needles: []string{"лист"}, value: "flat", label: "лист", weight: WeightProfileFlat},
	{needles: []string{"труба", "трубы", "труб"}, value: "pipe", label: "труба", weight: WeightProfilePipe},
}

// Extract runs every recognizer over prepared text (see textnorm.Prepare) and returns
// the matches ordered by position, then field, then value.
func Extract(text string) []Match {
	var out []Match
	out = append(out, diameters(text)...)
	out = append(out, classes(text)...)
	out = append(out, sections(text)...)
	out = append(out, steelGrades(text)...)
	out = append(out, gosts(text)...)
	out = append(out, thicknesses(text)...)
	out = append(out, hints(text, field.Surface, surfaceRules, true)...)
	out = append(out, hints(text, field.Profile, profileRules, false)...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// ByField groups matches by field, preserving order.
func ByField(matches []Match) map[field.Field][]Match {
	out := make(map[field.Field][]Match)
	for _, m := range matches {
		out[m.Field] = append(out[m.Field], m)
	}
	return out
}

func diameters(text string) []Match {
	var out []Match
	rules := []struct {
		re     *regexp.Regexp
		weight float64
		name   string
	}{
		{reDiameterSymbol, WeightDiameterSymbol, "diameter_symbol"},
		{reDiameterPrefix, WeightDiameterPrefix, "diameter_prefix"},
		{reDiameterUnit, WeightDiameterUnit, "diameter_unit"},
	}
	for _, r := range rules {
		eachBounded(r.re, text, func(loc []int) {
			n, ok := parseNum(text[loc[2]:loc[3]])
			if !ok {
				return
			}
			out = append(out, numericMatch(field.DiameterMM, n, text, loc, r.weight, r.name))
		})
	}
	return out
}

func classes(text string) []Match {
	var out []Match
	eachBounded(reClass, text, func(loc []int) {
		id := "A" + text[loc[2]:loc[3]]
		if loc[4] >= 0 {
			id += "C"
		}
		out = append(out, stringMatch(field.Class, id, id, text, loc, WeightClass, "class"))
	})
	return out
}

func sections(text string) []Match {
	var out []Match
	eachBounded(reSection, text, func(loc []int) {
		parts := make([]string, 0, 3)
		var last float64
		for g := 1; g <= 3; g++ {
			s, e := loc[2*g], loc[2*g+1]
			if s < 0 {
				break
			}
			n, ok := parseNum(text[s:e])
			if !ok {
				return
			}
			last = n
			parts = append(parts, filter.FormatNumber(n))
		}
		id := strings.Join(parts, "x")
		out = append(out, stringMatch(field.Section, id, strings.Join(parts, "×"), text, loc, WeightSection, "section"))
		if len(parts) == 3 {
			out = append(out, numericMatch(field.ThicknessMM, last, text, loc, WeightSectionWall, "section_wall"))
		}
	})
	return out
}

func steelGrades(text string) []Match {
	var out []Match
	eachBounded(reSteelSt, text, func(loc []int) {
		id := "СТ" + text[loc[2]:loc[3]]
		if loc[4] >= 0 {
			id += strings.ToUpper(text[loc[4]:loc[5]])
		}
		out = append(out, stringMatch(field.SteelGrade, id, id, text, loc, WeightSteelGrade, "steel_st"))
	})
	eachBounded(reSteelAlloy, text, func(loc []int) {
		id := text[loc[2]:loc[3]] + "Г" + text[loc[6]:loc[7]] + "С"
		out = append(out, stringMatch(field.SteelGrade, id, id, text, loc, WeightSteelGrade, "steel_alloy"))
	})
	eachBounded(reSteelStruct, text, func(loc []int) {
		prefix := "C"
		if text[loc[2]:loc[3]] == "s" {
			prefix = "S"
		}
		id := prefix + text[loc[4]:loc[5]]
		if loc[6] >= 0 {
			id += "C"
		}
		out = append(out, stringMatch(field.SteelGrade, id, id, text, loc, WeightSteelGrade, "steel_struct"))
	})
	return out
}

func gosts(text string) []Match {
	var out []Match
	eachBounded(reGOST, text, func(loc []int) {
		id := "ГОСТ " + text[loc[2]:loc[3]]
		if loc[4] >= 0 {
			id += "-" + text[loc[4]:loc[5]]
		}
		out = append(out, stringMatch(field.GOST, id, id, text, loc, WeightGOST, "gost"))
	})
	return out
}

func thicknesses(text string) []Match {
	var out []Match
	eachBounded(reThickness, text, func(loc []int) {
		n, ok := parseNum(text[loc[2]:loc[3]])
		if !ok {
			return
		}
		out = append(out, numericMatch(field.ThicknessMM, n, text, loc, WeightThickness, "thickness"))
	})
	return out
}

// hints emits one match per word holding a needle of a rule. With firstWins only the
// first rule (in rule order) that matches anywhere contributes.
func hints(text string, f field.Field, rules []hintRule, firstWins bool) []Match {
	var out []Match
	for _, r := range rules {
		words := make(map[int]int)
		for _, n := range r.needles {
			for from := 0; from < len(text); {
				i := strings.Index(text[from:], n)
				if i < 0 {
					break
				}
				ws, we := wordAround(text, from+i, from+i+len(n))
				words[ws] = we
				from = we
			}
		}
		if len(words) == 0 {
			continue
		}
		for ws, we := range words {
			out = append(out, Match{
				Field:  f,
				Value:  r.value,
				Label:  r.label,
				Span:   text[ws:we],
				Start:  ws,
				End:    we,
				Weight: r.weight,
				Rule:   f.String() + "_" + r.value,
			})
		}
		if firstWins {
			break
		}
	}
	return out
}

func numericMatch(f field.Field, n float64, text string, loc []int, weight float64, rule string) Match {
	v := n
	id := filter.FormatNumber(n)
	return Match{
		Field:  f,
		Value:  id,
		Label:  id + " мм",
		Num:    &v,
		Span:   text[loc[0]:loc[1]],
		Start:  loc[0],
		End:    loc[1],
		Weight: weight,
		Rule:   rule,
	}
}

func stringMatch(f field.Field, id, label, text string, loc []int, weight float64, rule string) Match {
	return Match{
		Field:  f,
		Value:  id,
		Label:  label,
		Span:   text[loc[0]:loc[1]],
		Start:  loc[0],
		End:    loc[1],
		Weight: weight,
		Rule:   rule,
	}
}

// eachBounded calls fn for every match of re whose span is not glued to a letter or digit
// on either side. RE2 has no Unicode-aware \b, so the check is done here.
func eachBounded(re *regexp.Regexp, text string, fn func(loc []int)) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if bounded(text, loc[0], loc[1]) {
			fn(loc)
		}
	}
}

func bounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordAround widens [start, end) to the enclosing space-delimited word.
func wordAround(text string, start, end int) (int, int) {
	for start > 0 && text[start-1] != ' ' {
		start--
	}
	for end < len(text) && text[end] != ' ' {
		end++
	}
	return start, end
}

func parseNum(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
