package textnorm

var stopWords = map[string]struct{}{
	// ru
	"и": {}, "в": {}, "во": {}, "на": {}, "с": {}, "со": {}, "по": {}, "для": {},
	"от": {}, "до": {}, "из": {}, "к": {}, "ко": {}, "у": {}, "о": {}, "об": {},
	"за": {}, "под": {}, "при": {}, "или": {}, "а": {}, "не": {}, "без": {},
	"шт": {}, "мм": {}, "м": {}, "тн": {}, "т": {}, "кг": {}, "купить": {}, "цена": {},
	// en
	"the": {}, "and": {}, "or": {}, "for": {}, "with": {}, "of": {}, "in": {},
	"on": {}, "to": {}, "mm": {}, "pcs": {},
	// separators left behind by Prepare
	"-": {}, "x": {}, "/": {},
}

// IsStopWord reports whether a prepared token carries no search meaning.
// The token is folded first so "Для" and "для," are both stop words.
func IsStopWord(token string) bool {
	if _, ok := stopWords[token]; ok {
		return true
	}
	f := Fold(token)
	if f == "" {
		return true
	}
	_, ok := stopWords[f]
	return ok
}
