package registration

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Querier — чтение всех записей таблицы.
type Querier interface {
	All(ctx context.Context) ([]Record, error)
}

type Views struct {
	Table    Querier
	Rooms    []string
	Location *time.Location
}

type Availability struct {
	Available []string
	Occupied  []string
}

// AllAvailable — все настроенные комнаты свободны (запасной вариант, если таблица недоступна).
func (v *Views) AllAvailable() Availability {
	return Availability{Available: sortRooms(v.Rooms)}
}

// RoomAvailability делит настроенные комнаты на свободные и занятые.
// Занята комната, встречающаяся хотя бы в одной сегодняшней записи.
func (v *Views) RoomAvailability(ctx context.Context, day time.Time) (Availability, error) {
	recs, err := v.today(ctx, day)
	if err != nil {
		return Availability{}, err
	}
	used := lo.Associate(recs, func(r Record) (string, struct{}) {
		return r.Room, struct{}{}
	})
	busy := func(room string, _ int) bool {
		_, ok := used[room]
		return ok
	}
	rooms := sortRooms(v.Rooms)
	return Availability{
		Available: lo.Reject(rooms, busy),
		Occupied:  lo.Filter(rooms, busy),
	}, nil
}

type Summary struct {
	Date    string
	Count   int
	Revenue decimal.Decimal
	Records []Record
}

// Recent — последние n записей дня.
func (s Summary) Recent(n int) []Record {
	if len(s.Records) <= n {
		return s.Records
	}
	return s.Records[len(s.Records)-n:]
}

func (v *Views) DailySummary(ctx context.Context, day time.Time) (Summary, error) {
	recs, err := v.today(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	sum := decimal.Zero
	for _, r := range recs {
		sum = sum.Add(PriceAmount(r.Price))
	}
	return Summary{
		Date:    v.dayKey(day),
		Count:   len(recs),
		Revenue: sum,
		Records: recs,
	}, nil
}

var reAmount = regexp.MustCompile(`\d+(?:\.\d+)?`)

// PriceAmount — первое число в цене ("S/35.50" -> 35.50); разделители тысяч игнорируются.
func PriceAmount(price string) decimal.Decimal {
	m := reAmount.FindString(strings.ReplaceAll(price, ",", ""))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (v *Views) dayKey(day time.Time) string {
	if v.Location != nil {
		day = day.In(v.Location)
	}
	return day.Format(dateLayout)
}

func (v *Views) today(ctx context.Context, day time.Time) ([]Record, error) {
	all, err := v.Table.All(ctx)
	if err != nil {
		return nil, err
	}
	key := v.dayKey(day)
	return lo.Filter(all, func(r Record, _ int) bool { return r.Date == key }), nil
}

// sortRooms: числовые номера по возрастанию, затем прочие по алфавиту.
func sortRooms(rooms []string) []string {
	out := lo.Uniq(rooms)
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}
