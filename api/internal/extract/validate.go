package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"hotel-bot/api/internal/util"
)

var nullLike = map[string]struct{}{
	"": {}, "-": {}, "NULL": {}, "NIL": {}, "NONE": {}, "N/A": {}, "NA": {},
	"NO ENCONTRADO": {}, "NO DETECTADO": {}, "NO DISPONIBLE": {}, "NO LEGIBLE": {},
	"DESCONOCIDO": {}, "UNKNOWN": {}, "NOT FOUND": {}, "NINGUNO": {},
}

var (
	reSepDate   = regexp.MustCompile(`^(\d{1,2})[/\-. ](\d{1,2})[/\-. ](\d{4})$`)
	rePlainDate = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`)
	reISODate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

const (
	minIDLen = 7
	maxIDLen = 10
)

func isNullLike(s string) bool {
	_, ok := nullLike[util.Fold(strings.TrimSpace(s))]
	return ok
}

// Validate приводит сырой результат к Fields: невалидное поле становится отсутствующим.
func Validate(raw RawFields) Fields {
	var f Fields
	if v, ok := validName(deref(raw.FullName)); ok {
		f.FullName = Some(v)
	}
	if v, ok := validID(deref(raw.IDNumber)); ok {
		f.IDNumber = Some(v)
	}
	if v, ok := NormalizeDate(deref(raw.BirthDate)); ok {
		f.BirthDate = Some(v)
	}
	if v, ok := validNationality(deref(raw.Nationality)); ok {
		f.Nationality = Some(v)
	}
	return f
}

func validName(s string) (string, bool) {
	if isNullLike(s) {
		return "", false
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if utf8.RuneCountInString(s) <= 3 {
		return "", false
	}
	return s, true
}

func validID(s string) (string, bool) {
	if isNullLike(s) {
		return "", false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < minIDLen || len(digits) > maxIDLen {
		return "", false
	}
	if strings.Trim(digits, "0") == "" {
		return "", false
	}
	return digits, true
}

// NormalizeDate принимает D/M/YYYY (разделители / - . пробел), DDMMYYYY и YYYY-MM-DD,
// возвращает DD/MM/YYYY.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if isNullLike(s) {
		return "", false
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		return dateFromParts(m[3], m[2], m[1], 1900, 2099)
	}
	if m := reSepDate.FindStringSubmatch(s); m != nil {
		return dateFromParts(m[1], m[2], m[3], 1900, 2099)
	}
	if m := rePlainDate.FindStringSubmatch(s); m != nil {
		return dateFromParts(m[1], m[2], m[3], 1900, 2099)
	}
	return "", false
}

func validNationality(s string) (Nationality, bool) {
	if isNullLike(s) || utf8.RuneCountInString(strings.TrimSpace(s)) <= 2 {
		return "", false
	}
	return MatchNationality(s)
}

func foldWord(w string) string { return util.Fold(w) }
