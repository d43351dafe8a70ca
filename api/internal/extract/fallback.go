package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)DNI\s*[:.]?\s*(\d{8})(?:\D|$)`),
	regexp.MustCompile(`N\s*[°º]\s*[:.]?\s*(\d{8})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{8})\s*-\s*\d(?:\D|$)`), // с контрольной цифрой
	regexp.MustCompile(`\b(\d{8})\b`),
	regexp.MustCompile(`(\d{8})`),
	regexp.MustCompile(`\b(\d{2}) (\d{3}) (\d{3})\b`),
}

var (
	labeledDate = regexp.MustCompile(`(?i)(?:FECHA\s+DE\s+NACIMIENTO|F\.\s*NAC\.?|NACIMIENTO)\s*[:.]?\s*(\d{1,2})[\s/.\-]+(\d{1,2})[\s/.\-]+(\d{4})`)
	bareDates   = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}) +(\d{1,2}) +(\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
		regexp.MustCompile(`\b(\d{2})(\d{2})(\d{4})\b`),
	}
)

var (
	reNameLabel = regexp.MustCompile(`(?i)\b(?:PRIMER\s+APELLIDO|SEGUNDO\s+APELLIDO|PRE\s*NOMBRES|APELLIDOS|NOMBRES)\b`)
	reUpperName = regexp.MustCompile(`^[\p{Lu} ]+$`)
	reLetters   = regexp.MustCompile(`^[\p{L} ]+$`)
)

// служебные слова документа, которые не могут быть именем
var boilerplate = []string{
	"DOCUMENTO", "IDENTIDAD", "REPUBLICA", "NACIONAL", "REGISTRO", "IDENTIFICACION",
	"PERU", "VENEZUELA", "COLOMBIA", "ECUADOR", "CHILE", "CEDULA", "CIUDADANIA",
	"DNI", "FECHA", "NACIMIENTO", "SEXO", "ESTADO", "CIVIL", "FIRMA", "EMISION",
	"CADUCIDAD", "VENCIMIENTO", "ELECTORAL", "NACIONALIDAD", "DOMICILIO",
}

// RegexFallback — детерминированное извлечение без модели. Всегда даёт все четыре поля
// (каждое найдено или nil).
func RegexFallback(text string) RawFields {
	upper := strings.ToUpper(text)
	lines := splitLines(upper)

	var raw RawFields
	raw.IDNumber = strPtr(findRegexID(upper))
	raw.BirthDate = strPtr(findDate(upper, true, 1920, 2010))
	if n, ok := MatchNationality(upper); ok {
		raw.Nationality = strPtr(string(n))
	}
	raw.FullName = strPtr(findName(lines, boilerplate))
	return raw
}

func findRegexID(text string) string {
	for _, re := range idPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			cand := strings.Join(m[1:], "")
			if isRegexID(cand) {
				return cand
			}
		}
	}
	return ""
}

func isRegexID(s string) bool {
	if len(s) != 8 || !isDigits(s) {
		return false
	}
	return s != "00000000" && !strings.HasPrefix(s, "000")
}

// findDate возвращает первую правдоподобную дату в формате DD/MM/YYYY.
func findDate(text string, withLabel bool, minYear, maxYear int) string {
	pats := bareDates
	if withLabel {
		pats = append([]*regexp.Regexp{labeledDate}, bareDates...)
	}
	for _, re := range pats {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := dateFromParts(m[1], m[2], m[3], minYear, maxYear); ok {
				return d
			}
		}
	}
	return ""
}

func dateFromParts(ds, ms, ys string, minYear, maxYear int) (string, bool) {
	d, err1 := strconv.Atoi(ds)
	m, err2 := strconv.Atoi(ms)
	y, err3 := strconv.Atoi(ys)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if d < 1 || d > 31 || m < 1 || m > 12 || y < minYear || y > maxYear {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", d, m, y), true
}

// findName: сначала строки с метками (значение после метки или на следующей строке),
// иначе — лучшая по очкам строка из одних букв.
func findName(lines []string, exclude []string) string {
	var parts []string
	for i, line := range lines {
		locs := reNameLabel.FindAllStringIndex(line, -1)
		if len(locs) == 0 {
			continue
		}
		rest := strings.Trim(line[locs[len(locs)-1][1]:], " :-.")
		if rest == "Y" {
			rest = ""
		}
		if rest == "" && i+1 < len(lines) && !reNameLabel.MatchString(lines[i+1]) {
			rest = lines[i+1]
		}
		rest = strings.TrimSpace(rest)
		if rest != "" && reUpperName.MatchString(rest) {
			parts = append(parts, rest)
		}
	}
	if len(parts) == 0 {
		if best := bestNameLine(lines, exclude); best != "" {
			parts = append(parts, best)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	words := lo.Uniq(strings.Fields(strings.Join(parts, " ")))
	return strings.Join(words, " ")
}

func bestNameLine(lines []string, exclude []string) string {
	best, bestScore := "", -1
	for _, line := range lines {
		if !reLetters.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}
		score := 0
		if len(words) >= 3 {
			score += 2
		}
		if n := utf8.RuneCountInString(line); n >= 5 && n <= 30 {
			score++
		}
		if !lo.SomeBy(words, func(w string) bool { return lo.Contains(exclude, foldWord(w)) }) {
			score++
		}
		if score > bestScore {
			best, bestScore = line, score
		}
	}
	return best
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
