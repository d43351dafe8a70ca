package registration

import "time"

type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingPhoto        State = "awaiting_document_photo"
	StateReviewing            State = "reviewing_document"
	StateEditingField         State = "awaiting_field_edit"
	StateAwaitingDuration     State = "awaiting_duration"
	StateAwaitingPrice        State = "awaiting_price"
	StateAwaitingCustomPrice  State = "awaiting_custom_price"
	StateAwaitingPayment      State = "awaiting_payment"
	StateAwaitingRoom         State = "awaiting_room"
	StateAwaitingCustomRoom   State = "awaiting_custom_room"
	StateAwaitingObservations State = "awaiting_observations"
	StateAwaitingConfirmation State = "awaiting_confirmation"
)

// Field — поле документа, которое оператор правит вручную.
type Field string

const (
	FieldName        Field = "name"
	FieldID          Field = "id"
	FieldBirthDate   Field = "birth"
	FieldNationality Field = "nat"
)

type Duration struct {
	Key       string
	Label     string
	Hours     int
	Overnight bool
}

var Durations = []Duration{
	{Key: "short", Label: "2 horas", Hours: 2},
	{Key: "medium", Label: "3 horas", Hours: 3},
	{Key: "overnight", Label: "Noche", Overnight: true},
}

func durationByKey(key string) (Duration, bool) {
	for _, d := range Durations {
		if d.Key == key {
			return d, true
		}
	}
	return Duration{}, false
}

// CheckOut — ожидаемый выезд: now+часы, для ночи всегда 08:00 следующего календарного дня.
func (d Duration) CheckOut(now time.Time) time.Time {
	if d.Overnight {
		y, m, day := now.Date()
		return time.Date(y, m, day+1, 8, 0, 0, 0, now.Location())
	}
	return now.Add(time.Duration(d.Hours) * time.Hour)
}
