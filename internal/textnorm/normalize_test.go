package textnorm

import (
	"reflect"
	"testing"
)

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Арматура", "арматура"},
		{"Ёрш", "ерш"},
		{"40×20", "40x20"},
		{"40х20", "40x20"},
		{"40X20", "40x20"},
		{"А500С,", "а500с"},
		{"d-12", "d12"},
		{"⌀12", "12"},
		{"...", ""},
		{"aрматура", "арматура"},
		{"cт3cп", "ст3сп"},
		{"a500с", "а500с"},
		{"c255", "c255"},
		{"prof1с", "prof1с"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFold_Idempotent(t *testing.T) {
	for _, in := range []string{"aрматура", "Ёрш", "40х20", "cт3cп", "prof1с", "a500"} {
		once := Fold(in)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold(Fold(%q)) = %q, want %q", in, twice, once)
		}
	}
	if got := Normalize("aрматура"); got[0] != "арматура" {
		t.Errorf("Normalize(aрматура) = %v, want the Cyrillic key first", got)
	}
}

func TestFold_DimensionalFormsCompareEqual(t *testing.T) {
	a, b, c := Fold("40×20"), Fold("40х20"), Fold("40x20")
	if a != b || b != c {
		t.Errorf("dimensional forms differ: %q %q %q", a, b, c)
	}
}

func TestNormalize_Candidates(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Арматура", []string{"арматура", "armatura", "арматур"}},
		{"трубы", []string{"трубы", "truby", "труб"}},
		{"шуруп", []string{"шуруп", "shurup"}},
		{"a500", []string{"a500"}},
		{"", nil},
		{"!!", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Арматура", "стальная", "трубами", "Уголок", "профилированный", "40×20х2",
		"ГОСТ-5781", "ф12", "гладкой", "листами", "ёмкость", "Swiss", "d-12", "а500с",
	}
	for _, in := range inputs {
		for _, c := range Normalize(in) {
			again := Normalize(c)
			if !contains(again, c) {
				t.Errorf("Normalize(%q) = %v does not contain candidate %q of %q", c, again, c, in)
			}
		}
	}
}

func TestStem_LongestSuffixWins(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"трубами", "труб", true},
		{"стальная", "стальн", true},
		{"стального", "стальн", true},
		{"листов", "лист", true},
		{"лист", "", false},
		{"она", "", false},
		{"трубаx", "труб", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Stem(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Stem(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTransliterate(t *testing.T) {
	if got := Transliterate("шуруп"); got != "shurup" {
		t.Errorf("got %q", got)
	}
	if got := Transliterate("юбка"); got != "yubka" {
		t.Errorf("got %q", got)
	}
	if got := Transliterate("latin"); got != "" {
		t.Errorf("latin input must yield no candidate, got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"труба стальная", "truba-stalnaya"},
		{"Арматура  А500С", "armatura-a500s"},
		{"  -- лист г/к --", "list-g-k"},
		{"12345", "12345"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
