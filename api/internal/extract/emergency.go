package extract

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Emergency — последняя попытка заполнить пустые поля по сырому тексту.
// Уже заполненные поля не трогает.
type Emergency struct {
	// Границы длины "голой" серии цифр. Широкий диапазон ловит и посторонние
	// числа (например, даты без разделителей), поэтому он настраивается.
	MinIDDigits int
	MaxIDDigits int
	Metrics     Metrics
}

func DefaultEmergency() Emergency {
	return Emergency{MinIDDigits: minIDLen, MaxIDDigits: maxIDLen}
}

var (
	reVenezuelanID = regexp.MustCompile(`(?i)(?:^|[^A-Z])[VE]\s*[-.]?\s*(\d{1,2}\.\d{3}\.\d{3})`)
	reDottedID     = regexp.MustCompile(`(?:^|[^\d.])(\d{1,2}\.\d{3}\.\d{3})(?:[^\d.]|$)`)
	reDigitRun     = regexp.MustCompile(`\d+`)
)

var emergencyBoilerplate = []string{"DOCUMENTO", "IDENTIDAD", "REPUBLICA", "NACIONAL", "DNI"}

// Fill дозаполняет поля в порядке: номер, имя, дата рождения.
func (e Emergency) Fill(f Fields, text string) Fields {
	if strings.TrimSpace(text) == "" {
		return f
	}
	upper := strings.ToUpper(text)

	if !f.IDNumber.Present() {
		if id, ok := validID(e.findID(upper)); ok {
			f.IDNumber = Some(id)
			e.filled("id_number")
		}
	}
	if !f.FullName.Present() {
		if name, ok := validName(findName(splitLines(upper), emergencyBoilerplate)); ok {
			f.FullName = Some(name)
			e.filled("full_name")
		}
	}
	if !f.BirthDate.Present() {
		if d := findDate(upper, true, 1900, 2010); d != "" {
			f.BirthDate = Some(d)
			e.filled("birth_date")
		}
	}
	return f
}

func (e Emergency) findID(text string) string {
	var cands []string
	for _, re := range []*regexp.Regexp{reVenezuelanID, reDottedID} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			cands = append(cands, strings.ReplaceAll(m[1], ".", ""))
		}
	}
	for _, run := range reDigitRun.FindAllString(text, -1) {
		if len(run) >= e.MinIDDigits && len(run) <= e.MaxIDDigits {
			cands = append(cands, run)
		}
	}
	for _, c := range cands {
		if !looksFake(c) {
			return c
		}
	}
	return ""
}

// looksFake — одна и та же цифра или "12345678".
func looksFake(s string) bool {
	if s == "12345678" {
		return true
	}
	return strings.Count(s, s[:1]) == len(s)
}

func (e Emergency) filled(field string) {
	log.WithField("field", field).Info("emergency: field recovered")
	if e.Metrics != nil {
		e.Metrics.EmergencyFill(field)
	}
}
