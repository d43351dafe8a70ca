package extract

import "hotel-bot/api/internal/util"

type Nationality string

const (
	Peruvian   Nationality = "PERUVIAN"
	Venezuelan Nationality = "VENEZUELAN"
	Colombian  Nationality = "COLOMBIAN"
	Ecuadorian Nationality = "ECUADORIAN"
	Chilean    Nationality = "CHILEAN"
	Bolivian   Nationality = "BOLIVIAN"
	Argentine  Nationality = "ARGENTINE"
)

// nationalityTable — порядок строк задаёт приоритет: побеждает первое совпадение.
// Новая страна добавляется строкой в таблицу.
var nationalityTable = []struct {
	value    Nationality
	label    string
	keywords []string
}{
	{Peruvian, "PERUANA", []string{"PERU", "PERUANA", "PERUANO", "PERUVIAN"}},
	{Venezuelan, "VENEZOLANA", []string{"VENEZUELA", "VENEZOLANA", "VENEZOLANO", "VENEZUELAN"}},
	{Colombian, "COLOMBIANA", []string{"COLOMBIA", "COLOMBIANA", "COLOMBIANO", "COLOMBIAN"}},
	{Ecuadorian, "ECUATORIANA", []string{"ECUADOR", "ECUATORIANA", "ECUATORIANO", "ECUADORIAN"}},
	{Chilean, "CHILENA", []string{"CHILE", "CHILENA", "CHILENO", "CHILEAN"}},
	{Bolivian, "BOLIVIANA", []string{"BOLIVIA", "BOLIVIANA", "BOLIVIANO", "BOLIVIAN"}},
	{Argentine, "ARGENTINA", []string{"ARGENTINA", "ARGENTINO", "ARGENTINE", "ARGENTINIAN"}},
}

// Label — подпись для оператора и таблицы.
func (n Nationality) Label() string {
	for _, row := range nationalityTable {
		if row.value == n {
			return row.label
		}
	}
	return string(n)
}

// MatchNationality ищет в тексте слово-ключ страны; сравнение без регистра и диакритики.
func MatchNationality(text string) (Nationality, bool) {
	words := asciiWords(util.Fold(text))
	if len(words) == 0 {
		return "", false
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, row := range nationalityTable {
		for _, k := range row.keywords {
			if _, ok := set[k]; ok {
				return row.value, true
			}
		}
	}
	return "", false
}

// Nationalities — допустимые значения в порядке приоритета.
func Nationalities() []Nationality {
	out := make([]Nationality, 0, len(nationalityTable))
	for _, row := range nationalityTable {
		out = append(out, row.value)
	}
	return out
}
