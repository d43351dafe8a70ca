package registration

import (
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Columns — заголовки таблицы регистраций в порядке колонок.
var Columns = []string{
	"Fecha",
	"Hora Ingreso",
	"Hora Salida Estimada",
	"Habitación",
	"DNI",
	"Nombre",
	"Nacionalidad",
	"Duración",
	"Precio",
	"Forma de Pago",
	"Observaciones",
	"Registrado por",
}

// Record — одна строка таблицы; отсутствующие поля документа пишутся пустыми.
type Record struct {
	Date         string
	CheckIn      string
	CheckOut     string
	Room         string
	IDNumber     string
	Name         string
	Nationality  string
	Duration     string
	Price        string
	Payment      string
	Observations string
	RegisteredBy string
}

func (r Record) values() []string {
	return []string{
		r.Date, r.CheckIn, r.CheckOut, r.Room, r.IDNumber, r.Name,
		r.Nationality, r.Duration, r.Price, r.Payment, r.Observations, r.RegisteredBy,
	}
}

func (r Record) Row() []any {
	vals := r.values()
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// RecordFromRow собирает запись по заголовку; без заголовка — по позиции колонок.
func RecordFromRow(header, row []string) Record {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cell := func(col int) string {
		pos := col
		if len(idx) > 0 {
			p, ok := idx[Columns[col]]
			if !ok {
				return ""
			}
			pos = p
		}
		if pos < len(row) {
			return strings.TrimSpace(row[pos])
		}
		return ""
	}
	return Record{
		Date:         cell(0),
		CheckIn:      cell(1),
		CheckOut:     cell(2),
		Room:         cell(3),
		IDNumber:     cell(4),
		Name:         cell(5),
		Nationality:  cell(6),
		Duration:     cell(7),
		Price:        cell(8),
		Payment:      cell(9),
		Observations: cell(10),
		RegisteredBy: cell(11),
	}
}

// NewRecord — запись из подтверждённой сессии; даты и время в зоне CheckIn.
func NewRecord(s *Session) Record {
	nat := ""
	if n, ok := s.Document.Nationality.Get(); ok {
		nat = n.Label()
	}
	return Record{
		Date:         s.CheckIn.Format(dateLayout),
		CheckIn:      s.CheckIn.Format(timeLayout),
		CheckOut:     formatCheckOut(s.CheckIn, s.CheckOut),
		Room:         s.Room,
		IDNumber:     s.Document.IDNumber.OrElse(""),
		Name:         s.Document.FullName.OrElse(""),
		Nationality:  nat,
		Duration:     s.Duration.Label,
		Price:        s.Price,
		Payment:      s.Payment,
		Observations: s.Observations,
		RegisteredBy: s.Operator,
	}
}

func formatCheckOut(in, out time.Time) string {
	if out.IsZero() {
		return ""
	}
	return out.In(in.Location()).Format(timeLayout)
}
