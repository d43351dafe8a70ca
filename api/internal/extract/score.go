package extract

import (
	"regexp"
	"strings"
	"unicode"

	"hotel-bot/api/internal/util"
)

// Scorer оценивает, похож ли распознанный текст на документ.
// Веса подобраны эмпирически; порог настраивается (SCORE_THRESHOLD).
type Scorer struct {
	MinLength     int
	Threshold     int
	IDWeight      int
	KeywordWeight int
	DateWeight    int
	NameWeight    int
}

func DefaultScorer() Scorer {
	return Scorer{MinLength: 20, Threshold: 2, IDWeight: 2, KeywordWeight: 1, DateWeight: 1, NameWeight: 1}
}

var (
	reBareID8 = regexp.MustCompile(`(?:^|\D)\d{8}(?:\D|$)`)
	reAnyDate = regexp.MustCompile(`\d{1,2}[ /.\-]\d{1,2}[ /.\-]\d{4}|\d{4}-\d{2}-\d{2}`)
)

var documentKeywords = map[string]struct{}{
	"DNI": {}, "DOCUMENTO": {}, "IDENTIDAD": {}, "CEDULA": {}, "IDENTIFICACION": {},
	"REPUBLICA": {}, "NACIONAL": {}, "APELLIDOS": {}, "NOMBRES": {}, "NACIMIENTO": {},
	"NACIONALIDAD": {}, "REGISTRO": {}, "CIUDADANIA": {}, "PASAPORTE": {},
}

func (s Scorer) Score(text string) int {
	score := 0
	if reBareID8.MatchString(text) {
		score += s.IDWeight
	}
	if hasKeyword(text) {
		score += s.KeywordWeight
	}
	if reAnyDate.MatchString(text) {
		score += s.DateWeight
	}
	if len(upperTokens(text)) >= 2 {
		score += s.NameWeight
	}
	return score
}

// Successful — текст достаточно длинный и набрал порог.
func (s Scorer) Successful(text string) bool {
	text = strings.TrimSpace(text)
	return len([]rune(text)) >= s.MinLength && s.Score(text) >= s.Threshold
}

func hasKeyword(text string) bool {
	for _, w := range asciiWords(util.Fold(text)) {
		if _, ok := documentKeywords[w]; ok {
			return true
		}
	}
	return false
}

// upperTokens — различные слова из заглавных букв длиной от 2.
func upperTokens(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if len([]rune(w)) < 2 {
			continue
		}
		upper := true
		for _, r := range w {
			if !unicode.IsUpper(r) {
				upper = false
				break
			}
		}
		if upper {
			out[w] = struct{}{}
		}
	}
	return out
}

func asciiWords(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool { return r < 'A' || r > 'Z' })
}
