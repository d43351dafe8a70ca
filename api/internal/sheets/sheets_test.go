package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"hotel-bot/api/internal/registration"
)

type fakeSheet struct {
	mu      sync.Mutex
	values  [][]string
	updates map[string]string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, rng, _ := strings.Cut(r.URL.Path, "/values/")
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": f.values})
	case http.MethodPut:
		var body struct {
			Values [][]string `json:"values"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		if f.updates == nil {
			f.updates = map[string]string{}
		}
		f.updates[rng] = body.Values[0][0]
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedCells": 1})
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func newTestStore(t *testing.T, f *fakeSheet) *Store {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return NewWithService(svc, "sid", "Registros", time.FixedZone("PET", -5*3600))
}

func sheetRows() [][]string {
	hdr := header()
	return [][]string{
		hdr,
		{"2024-03-10", "10:00", "12:00", "1", "45678912", "ANA", "PERUANA", "2 horas", "S/25", "Yape", "", "Ana", "11:50"},
		{"2024-03-10", "14:00", "16:00", "2", "45678912", "ANA", "PERUANA", "2 horas", "S/25", "Yape"},
		{"2024-03-10", "15:00", "17:00", "3", "11223344", "LUIS"},
	}
}

func TestAllReadsRecordsByHeader(t *testing.T) {
	st := newTestStore(t, &fakeSheet{values: sheetRows()})

	recs, err := st.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2", recs[1].Room)
	assert.Equal(t, "S/25", recs[1].Price)
	assert.Equal(t, "LUIS", recs[2].Name)
	assert.Empty(t, recs[2].Payment)
}

func TestAllOnEmptySheet(t *testing.T) {
	st := newTestStore(t, &fakeSheet{})
	recs, err := st.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUpdateCheckoutTakesFirstOpenRow(t *testing.T) {
	f := &fakeSheet{values: sheetRows()}
	st := newTestStore(t, f)
	at := time.Date(2024, 3, 10, 21, 40, 0, 0, time.UTC)

	ok, err := st.UpdateCheckout(context.Background(), "45678912", at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"'Registros'!M3": "16:40"}, f.updates)

	ok, err = st.UpdateCheckout(context.Background(), "99999999", at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindOpenRowWithoutCheckoutHeader(t *testing.T) {
	rows := [][]string{registration.Columns, {"", "", "", "", "123456789"}}
	row, col, ok := findOpenRow(rows, "123456789")
	require.True(t, ok)
	assert.Equal(t, 2, row)
	assert.Equal(t, 12, col)

	_, _, ok = findOpenRow([][]string{{"Fecha"}}, "123456789")
	assert.False(t, ok)
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "M", columnLetter(12))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AZ", columnLetter(51))
}
