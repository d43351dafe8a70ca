package registration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"hotel-bot/api/internal/extract"
	"hotel-bot/api/internal/imageproc"
)

type Extractor interface {
	Extract(ctx context.Context, photo []byte) extract.Result
}

// Table — таблица регистраций.
type Table interface {
	Querier
	Append(ctx context.Context, rec Record) error
	UpdateCheckout(ctx context.Context, idNumber string, at time.Time) (bool, error)
}

type Metrics interface {
	Registration(result string)
	StoreError(store, op string)
}

type Options struct {
	Prices   []string
	Payments []string
}

type Operator struct {
	ID   int64
	Name string
}

// PhotoSource скачивает фото; вызывается только если фото действительно ждут.
type PhotoSource func(ctx context.Context) ([]byte, error)

type Deps struct {
	Sessions   *SessionStore
	Extractor  Extractor
	Photos     PhotoStore
	Table      Table
	Views      *Views
	Options    Options
	Authorized []int64
	Clock      func() time.Time
	Location   *time.Location
	Logger     logrus.FieldLogger
	Metrics    Metrics
	// Report — XLSX к дневной сводке; nil = без вложения.
	Report func(Summary) ([]byte, error)
}

type Machine struct {
	d          Deps
	authorized map[int64]struct{}
}

func NewMachine(d Deps) *Machine {
	if d.Sessions == nil {
		d.Sessions = NewSessionStore()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Views == nil {
		d.Views = &Views{Table: d.Table}
	}
	if d.Views.Location == nil {
		d.Views.Location = d.Location
	}
	auth := make(map[int64]struct{}, len(d.Authorized))
	for _, id := range d.Authorized {
		auth[id] = struct{}{}
	}
	return &Machine{d: d, authorized: auth}
}

func (m *Machine) allowed(userID int64) bool {
	_, ok := m.authorized[userID]
	return ok
}

func (m *Machine) now() time.Time { return m.d.Clock().In(m.d.Location) }

func (m *Machine) log(op Operator) logrus.FieldLogger {
	return m.d.Logger.WithField("user", op.ID)
}

// recoverTo — паника в обработчике превращается в общее сообщение об ошибке, сессия не трогается.
func (m *Machine) recoverTo(op Operator, event string, out *[]Reply) {
	if rec := recover(); rec != nil {
		m.log(op).WithFields(logrus.Fields{"event": event, "panic": rec}).Error("registration: handler panic")
		*out = []Reply{md(msgSystemError)}
	}
}

func (m *Machine) storeError(store, op string) {
	if m.d.Metrics != nil {
		m.d.Metrics.StoreError(store, op)
	}
}

func (m *Machine) registration(result string) {
	if m.d.Metrics != nil {
		m.d.Metrics.Registration(result)
	}
}

// ExpectingPhoto ждёт окончания текущего события оператора.
func (m *Machine) ExpectingPhoto(userID int64) bool {
	unlock := m.d.Sessions.Lock(userID)
	defer unlock()
	sess, ok := m.d.Sessions.Get(userID)
	return ok && sess.State == StateAwaitingPhoto
}

func (m *Machine) Command(ctx context.Context, op Operator, name, args string) (out []Reply) {
	defer m.recoverTo(op, "command", &out)
	if !m.allowed(op.ID) {
		if name == "start" {
			return []Reply{text(msgUnauthorizedStart)}
		}
		return []Reply{text(msgUnauthorized)}
	}
	switch name {
	case "start":
		return []Reply{md(msgWelcome)}
	case "nuevo":
		return m.startRegistration(ctx, op)
	case "resumen":
		return m.dailySummary(ctx, op)
	case "habitaciones":
		return m.availability(ctx, op)
	case "ayuda", "help":
		return []Reply{md(msgHelp)}
	case "salida":
		return m.checkout(ctx, op, args)
	case "fotos":
		return m.recentPhotos(ctx, op)
	default:
		return []Reply{text(msgUnknownCommand)}
	}
}

func (m *Machine) startRegistration(ctx context.Context, op Operator) []Reply {
	unlock := m.d.Sessions.Lock(op.ID)
	defer unlock()
	sess := newSession(op.ID, op.Name, m.now())
	if prev := m.d.Sessions.Create(sess); prev != nil {
		m.discardPhoto(ctx, op, prev)
	}
	m.log(op).WithField("session", sess.ID).Info("registration: started")
	return []Reply{md(msgNewClient)}
}

func (m *Machine) Photo(ctx context.Context, op Operator, fetch PhotoSource) (out []Reply) {
	defer m.recoverTo(op, "photo", &out)
	if !m.allowed(op.ID) {
		return []Reply{text(msgUnauthorized)}
	}
	unlock := m.d.Sessions.Lock(op.ID)
	defer unlock()

	sess, ok := m.d.Sessions.Get(op.ID)
	if !ok || sess.State != StateAwaitingPhoto {
		return []Reply{text(msgNotExpectingPhoto)}
	}
	data, err := fetch(ctx)
	if err != nil {
		m.log(op).Warnf("registration: download photo: %v", err)
		return []Reply{text(msgPhotoDownload)}
	}

	res := m.d.Extractor.Extract(ctx, data)
	sess.Document = res.Fields
	sess.Quality = res.Quality()
	sess.State = StateReviewing
	m.log(op).WithFields(logrus.Fields{
		"session": sess.ID,
		"quality": sess.Quality,
		"source":  res.Source,
		"cached":  res.FromCache,
	}).Info("registration: document extracted")

	out = append(out, md(qualityNotice(sess.Quality)))
	if !m.storePhoto(ctx, op, sess, data) {
		out = append(out, text(msgPhotoNotStored))
	}
	return append(out, md(reviewText(sess.Document)).with(reviewKeyboard()))
}

// storePhoto загружает копию документа; false — загрузка не удалась.
func (m *Machine) storePhoto(ctx context.Context, op Operator, sess *Session, data []byte) bool {
	if m.d.Photos == nil {
		return true
	}
	m.discardPhoto(ctx, op, sess)
	name := PhotoFilename(sess.Document.IDNumber.OrElse(""), sess.Document.FullName.OrElse(""), m.now())
	ph, err := m.d.Photos.Upload(ctx, imageproc.Normalize(data, imageproc.LegacyLimits), name)
	if err != nil {
		m.log(op).Errorf("registration: upload photo %s: %v", name, err)
		m.storeError("drive", "upload")
		return false
	}
	sess.Photo = &ph
	return true
}

func (m *Machine) discardPhoto(ctx context.Context, op Operator, sess *Session) {
	if sess.Photo == nil || m.d.Photos == nil {
		return
	}
	if err := m.d.Photos.Delete(ctx, sess.Photo.ID); err != nil {
		m.log(op).Warnf("registration: delete photo %s: %v", sess.Photo.ID, err)
		m.storeError("drive", "delete")
	}
	sess.Photo = nil
}

func (m *Machine) Text(ctx context.Context, op Operator, input string) (out []Reply) {
	defer m.recoverTo(op, "text", &out)
	if !m.allowed(op.ID) {
		return []Reply{text(msgUnauthorized)}
	}
	unlock := m.d.Sessions.Lock(op.ID)
	defer unlock()

	sess, ok := m.d.Sessions.Get(op.ID)
	if !ok {
		return []Reply{text(msgNoSession)}
	}
	input = strings.TrimSpace(input)

	switch sess.State {
	case StateAwaitingPhoto:
		return []Reply{text(msgSendPhoto)}
	case StateEditingField:
		return m.applyEdit(sess, input)
	case StateAwaitingCustomPrice:
		if input == "" {
			return []Reply{text(msgInvalidAnswer)}
		}
		sess.Price = input
		sess.State = StateAwaitingPayment
		return []Reply{m.askPayment()}
	case StateAwaitingCustomRoom:
		if input == "" {
			return []Reply{text(msgInvalidAnswer)}
		}
		sess.Room = input
		sess.State = StateAwaitingObservations
		return []Reply{md(msgAskObs).with(observationsKeyboard())}
	case StateAwaitingObservations:
		sess.Observations = input
		sess.State = StateAwaitingConfirmation
		return []Reply{md(summaryText(sess)).with(summaryKeyboard())}
	default:
		return []Reply{text(msgUseButtons)}
	}
}

// applyEdit проверяет значение теми же правилами, что и извлечённые поля.
func (m *Machine) applyEdit(sess *Session, input string) []Reply {
	switch sess.EditingField {
	case FieldName:
		f := extract.Validate(extract.RawFields{FullName: &input})
		if !f.FullName.Present() {
			return []Reply{text(msgInvalidName)}
		}
		sess.Document.FullName = f.FullName
	case FieldID:
		f := extract.Validate(extract.RawFields{IDNumber: &input})
		if !f.IDNumber.Present() {
			return []Reply{text(msgInvalidID)}
		}
		sess.Document.IDNumber = f.IDNumber
	case FieldBirthDate:
		f := extract.Validate(extract.RawFields{BirthDate: &input})
		if !f.BirthDate.Present() {
			return []Reply{text(msgInvalidBirth)}
		}
		sess.Document.BirthDate = f.BirthDate
	case FieldNationality:
		f := extract.Validate(extract.RawFields{Nationality: &input})
		if !f.Nationality.Present() {
			return []Reply{md(msgEditNat).with(nationalityKeyboard())}
		}
		sess.Document.Nationality = f.Nationality
	}
	return []Reply{m.backToReview(sess)}
}

func (m *Machine) backToReview(sess *Session) Reply {
	sess.EditingField = ""
	sess.State = StateReviewing
	return md(reviewText(sess.Document)).with(reviewKeyboard())
}

func (m *Machine) Callback(ctx context.Context, op Operator, data string) (out []Reply) {
	defer m.recoverTo(op, "callback", &out)
	if !m.allowed(op.ID) {
		return []Reply{alert(msgUnauthorized)}
	}
	unlock := m.d.Sessions.Lock(op.ID)
	defer unlock()

	sess, ok := m.d.Sessions.Get(op.ID)
	if !ok {
		return []Reply{alert(msgNoSession)}
	}
	if r, ok := m.route(ctx, op, sess, data); ok {
		return r
	}
	// кнопка из старого сообщения
	return []Reply{alert(msgStale)}
}

func (m *Machine) route(ctx context.Context, op Operator, sess *Session, data string) ([]Reply, bool) {
	at := func(st State) bool { return sess.State == st }
	one := func(r Reply) ([]Reply, bool) { return []Reply{r}, true }

	switch {
	case data == cbRestart:
		return one(m.finish(ctx, op, sess, "restarted", msgRestarted))
	case data == cbCancel:
		return one(m.finish(ctx, op, sess, "cancelled", msgCancelled))

	case data == cbContinue && at(StateReviewing):
		sess.State = StateAwaitingDuration
		return one(md(msgAskDuration).with(durationKeyboard()).replacing())

	case data == cbEdit && !at(StateAwaitingPhoto):
		sess.State = StateReviewing
		sess.EditingField = ""
		return one(md(msgEditMenu).with(editKeyboard()).replacing())

	case strings.HasPrefix(data, cbEditField) && at(StateReviewing):
		f := Field(strings.TrimPrefix(data, cbEditField))
		prompt := map[Field]Reply{
			FieldName:        text(msgEditName),
			FieldID:          text(msgEditID),
			FieldBirthDate:   text(msgEditBirth),
			FieldNationality: md(msgEditNat).with(nationalityKeyboard()),
		}
		r, ok := prompt[f]
		if !ok {
			return nil, false
		}
		sess.State = StateEditingField
		sess.EditingField = f
		return one(r.replacing())

	case strings.HasPrefix(data, cbNat) && at(StateEditingField) && sess.EditingField == FieldNationality:
		n := extract.Nationality(strings.TrimPrefix(data, cbNat))
		for _, known := range extract.Nationalities() {
			if n == known {
				sess.Document.Nationality = extract.Some(n)
				return one(m.backToReview(sess).replacing())
			}
		}
		return nil, false

	case strings.HasPrefix(data, cbDuration) && at(StateAwaitingDuration):
		d, ok := durationByKey(strings.TrimPrefix(data, cbDuration))
		if !ok {
			return nil, false
		}
		// CheckIn зафиксирован при /nuevo; выезд считается от момента выбора
		sess.Duration = d
		sess.CheckOut = d.CheckOut(m.now())
		sess.State = StateAwaitingPrice
		return one(md(msgAskPrice).with(indexedKeyboard(cbPrice, m.d.Options.Prices, "💰 Precio personalizado")).replacing())

	case data == cbPrice+cbCustom && at(StateAwaitingPrice):
		sess.State = StateAwaitingCustomPrice
		return one(text(msgCustomPrice).replacing())

	case strings.HasPrefix(data, cbPrice) && at(StateAwaitingPrice):
		price, ok := pick(m.d.Options.Prices, strings.TrimPrefix(data, cbPrice))
		if !ok {
			return nil, false
		}
		sess.Price = price
		sess.State = StateAwaitingPayment
		return one(m.askPayment().replacing())

	case strings.HasPrefix(data, cbPayment) && at(StateAwaitingPayment):
		pay, ok := pick(m.d.Options.Payments, strings.TrimPrefix(data, cbPayment))
		if !ok {
			return nil, false
		}
		sess.Payment = pay
		sess.State = StateAwaitingRoom
		return one(m.askRoom(ctx, op))

	case strings.HasPrefix(data, cbRoomBusy) && at(StateAwaitingRoom):
		return one(alert(msgRoomBusy))

	case data == cbRoom+cbCustom && at(StateAwaitingRoom):
		sess.State = StateAwaitingCustomRoom
		return one(text(msgCustomRoom).replacing())

	case strings.HasPrefix(data, cbRoom) && at(StateAwaitingRoom):
		room := strings.TrimPrefix(data, cbRoom)
		if m.roomTaken(ctx, op, room) {
			return one(alert(msgRoomBusy))
		}
		sess.Room = room
		sess.State = StateAwaitingObservations
		return one(md(msgAskObs).with(observationsKeyboard()).replacing())

	case data == cbObsAdd && at(StateAwaitingObservations):
		return one(md(msgAddObs).replacing())

	case data == cbObsSkip && at(StateAwaitingObservations):
		sess.Observations = ""
		sess.State = StateAwaitingConfirmation
		return one(md(summaryText(sess)).with(summaryKeyboard()).replacing())

	case data == cbConfirm && at(StateAwaitingConfirmation):
		return one(m.confirm(ctx, op, sess))
	}
	return nil, false
}

func pick(options []string, idx string) (string, bool) {
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(options) {
		return "", false
	}
	return options[i], true
}

func (m *Machine) askPayment() Reply {
	return md(msgAskPayment).with(indexedKeyboard(cbPayment, m.d.Options.Payments, ""))
}

// askRoom: если таблица недоступна, все комнаты показываются свободными.
func (m *Machine) askRoom(ctx context.Context, op Operator) Reply {
	av, err := m.d.Views.RoomAvailability(ctx, m.now())
	if err != nil {
		m.log(op).Warnf("registration: room availability: %v", err)
		m.storeError("sheets", "read")
		av = m.d.Views.AllAvailable()
	}
	return md(msgAskRoom).with(roomKeyboard(av)).replacing()
}

// roomTaken перечитывает таблицу: комнату могли занять, пока клавиатура висела в чате.
// Таблица недоступна — не блокируем заселение.
func (m *Machine) roomTaken(ctx context.Context, op Operator, room string) bool {
	av, err := m.d.Views.RoomAvailability(ctx, m.now())
	if err != nil {
		m.log(op).Warnf("registration: room availability: %v", err)
		m.storeError("sheets", "read")
		return false
	}
	return lo.Contains(av.Occupied, room)
}

// confirm: при ошибке записи сессия остаётся в awaiting_confirmation, можно повторить.
func (m *Machine) confirm(ctx context.Context, op Operator, sess *Session) Reply {
	rec := NewRecord(sess)
	if err := m.d.Table.Append(ctx, rec); err != nil {
		m.log(op).WithField("session", sess.ID).Errorf("registration: append record: %v", err)
		m.storeError("sheets", "append")
		m.registration("failed")
		return md(msgSaveFailed).with(summaryKeyboard())
	}
	_, _ = m.d.Sessions.Delete(op.ID)
	m.registration("confirmed")
	m.log(op).WithFields(logrus.Fields{"session": sess.ID, "room": rec.Room}).Info("registration: saved")
	return md(msgSaved).replacing()
}

// finish — отмена или перезапуск: сессия удаляется вместе с уже загруженным фото.
func (m *Machine) finish(ctx context.Context, op Operator, sess *Session, result, msg string) Reply {
	_, _ = m.d.Sessions.Delete(op.ID)
	m.discardPhoto(ctx, op, sess)
	m.registration(result)
	m.log(op).WithField("session", sess.ID).Infof("registration: %s", result)
	return md(msg).replacing()
}

func (m *Machine) dailySummary(ctx context.Context, op Operator) []Reply {
	sum, err := m.d.Views.DailySummary(ctx, m.now())
	if err != nil {
		m.log(op).Errorf("registration: daily summary: %v", err)
		m.storeError("sheets", "read")
		return []Reply{text(msgSummaryFailed)}
	}
	out := []Reply{md(dailySummaryText(sum))}
	if m.d.Report == nil || sum.Count == 0 {
		return out
	}
	data, err := m.d.Report(sum)
	if err != nil {
		m.log(op).Warnf("registration: daily workbook: %v", err)
		return out
	}
	return append(out, Reply{Document: &Document{Name: "resumen_" + sum.Date + ".xlsx", Data: data}})
}

func (m *Machine) availability(ctx context.Context, op Operator) []Reply {
	av, err := m.d.Views.RoomAvailability(ctx, m.now())
	if err != nil {
		m.log(op).Errorf("registration: room availability: %v", err)
		m.storeError("sheets", "read")
		return []Reply{text(msgAvailabilityFailed)}
	}
	return []Reply{md(availabilityText(av))}
}

func (m *Machine) checkout(ctx context.Context, op Operator, args string) []Reply {
	arg := strings.TrimSpace(args)
	id, ok := extract.Validate(extract.RawFields{IDNumber: &arg}).IDNumber.Get()
	if !ok {
		return []Reply{text(msgCheckoutUsage)}
	}
	at := m.now()
	found, err := m.d.Table.UpdateCheckout(ctx, id, at)
	if err != nil {
		m.log(op).Errorf("registration: checkout %s: %v", id, err)
		m.storeError("sheets", "update")
		return []Reply{text(msgCheckoutFailed)}
	}
	if !found {
		return []Reply{text(fmt.Sprintf("No encontré un registro sin salida para el DNI %s.", id))}
	}
	return []Reply{text(fmt.Sprintf("✅ Salida registrada para el DNI %s a las %s.", id, at.Format(timeLayout)))}
}

func (m *Machine) recentPhotos(ctx context.Context, op Operator) []Reply {
	if m.d.Photos == nil {
		return []Reply{text(msgNoPhotos)}
	}
	photos, err := m.d.Photos.List(ctx, 5)
	if err != nil {
		m.log(op).Errorf("registration: list photos: %v", err)
		m.storeError("drive", "list")
		return []Reply{text(msgPhotosFailed)}
	}
	if len(photos) == 0 {
		return []Reply{text(msgNoPhotos)}
	}
	return []Reply{md(photosText(photos))}
}
