package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"hotel-bot/api/internal/extract"
)

var pet = time.FixedZone("PET", -5*3600)

type fakeExtractor struct {
	res   extract.Result
	panic bool
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) extract.Result {
	f.calls++
	if f.panic {
		panic("extractor exploded")
	}
	return f.res
}

type fakeTable struct {
	mu        sync.Mutex
	records   []Record
	appended  []Record
	appendErr error
	readErr   error
	checkouts map[string]time.Time
}

func (t *fakeTable) All(context.Context) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return nil, t.readErr
	}
	return append(append([]Record(nil), t.records...), t.appended...), nil
}

func (t *fakeTable) Append(_ context.Context, rec Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.appendErr != nil {
		return t.appendErr
	}
	t.appended = append(t.appended, rec)
	return nil
}

func (t *fakeTable) UpdateCheckout(_ context.Context, id string, at time.Time) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return false, t.readErr
	}
	for _, r := range append(t.records, t.appended...) {
		if r.IDNumber == id {
			if t.checkouts == nil {
				t.checkouts = map[string]time.Time{}
			}
			t.checkouts[id] = at
			return true, nil
		}
	}
	return false, nil
}

type fakePhotos struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	list      []Photo
}

func (p *fakePhotos) Upload(_ context.Context, _ []byte, name string) (Photo, error) {
	if p.uploadErr != nil {
		return Photo{}, p.uploadErr
	}
	p.uploaded = append(p.uploaded, name)
	return Photo{ID: fmt.Sprintf("file-%d", len(p.uploaded)), Name: name}, nil
}

func (p *fakePhotos) List(_ context.Context, limit int) ([]Photo, error) {
	if len(p.list) > limit {
		return p.list[:limit], nil
	}
	return p.list, nil
}

func (p *fakePhotos) Delete(_ context.Context, id string) error {
	p.deleted = append(p.deleted, id)
	return nil
}

type fakeMetrics struct {
	results     []string
	storeErrors []string
}

func (m *fakeMetrics) Registration(result string) { m.results = append(m.results, result) }
func (m *fakeMetrics) StoreError(store, op string) {
	m.storeErrors = append(m.storeErrors, store+"/"+op)
}

const (
	operatorID = int64(100)
	strangerID = int64(999)
)

var operator = Operator{ID: operatorID, Name: "Ana"}

type harness struct {
	machine   *Machine
	sessions  *SessionStore
	extractor *fakeExtractor
	table     *fakeTable
	photos    *fakePhotos
	metrics   *fakeMetrics
	logs      *test.Hook
	now       time.Time
}

func newHarness(now time.Time) *harness {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h := &harness{
		sessions: NewSessionStore(),
		extractor: &fakeExtractor{res: extract.Result{Fields: extract.Fields{
			FullName:    extract.Some("MARIA ELENA QUISPE"),
			IDNumber:    extract.Some("45678912"),
			BirthDate:   extract.Some("15/03/1990"),
			Nationality: extract.Some(extract.Peruvian),
		}}},
		table:   &fakeTable{},
		photos:  &fakePhotos{},
		metrics: &fakeMetrics{},
		logs:    hook,
		now:     now,
	}
	h.machine = NewMachine(Deps{
		Sessions:  h.sessions,
		Extractor: h.extractor,
		Photos:    h.photos,
		Table:     h.table,
		Views:     &Views{Table: h.table, Rooms: []string{"1", "2", "3"}},
		Options: Options{
			Prices:   []string{"S/25", "S/30", "S/40"},
			Payments: []string{"Efectivo", "Yape", "Plin"},
		},
		Authorized: []int64{operatorID},
		Clock:      func() time.Time { return h.now },
		Location:   pet,
		Logger:     logger,
		Metrics:    h.metrics,
	})
	return h
}

func photoBytes(context.Context) ([]byte, error) { return []byte("not really a jpeg"), nil }

func failingDownload(context.Context) ([]byte, error) { return nil, errors.New("telegram timeout") }

func (h *harness) state() State {
	s, ok := h.sessions.Get(operatorID)
	if !ok {
		return StateIdle
	}
	return s.State
}

func (h *harness) session() *Session {
	s, _ := h.sessions.Get(operatorID)
	return s
}

// toSummary проводит сессию от /nuevo до экрана подтверждения.
func (h *harness) toSummary(ctx context.Context) {
	h.machine.Command(ctx, operator, "nuevo", "")
	h.machine.Photo(ctx, operator, photoBytes)
	h.machine.Callback(ctx, operator, "continue")
	h.machine.Callback(ctx, operator, "dur:short")
	h.machine.Callback(ctx, operator, "price:0")
	h.machine.Callback(ctx, operator, "pay:0")
	h.machine.Callback(ctx, operator, "room:1")
	h.machine.Callback(ctx, operator, "obs:skip")
}

func buttons(r Reply) []string {
	var out []string
	for _, row := range r.Keyboard {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}
	return out
}
