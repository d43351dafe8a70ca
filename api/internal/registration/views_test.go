package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomAvailabilityPartitionsConfiguredRooms(t *testing.T) {
	table := &fakeTable{records: []Record{
		{Date: "2024-03-10", Room: "4"},
		{Date: "2024-03-10", Room: "10"},
		{Date: "2024-03-10", Room: "4"},
		{Date: "2024-03-10", Room: "Suite"},
		{Date: "2024-03-09", Room: "1"},
	}}
	v := &Views{Table: table, Rooms: []string{"10", "2", "1", "4", "3"}, Location: pet}

	av, err := v.RoomAvailability(context.Background(), time.Date(2024, 3, 10, 12, 0, 0, 0, pet))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, av.Available)
	assert.Equal(t, []string{"4", "10"}, av.Occupied)
	assert.ElementsMatch(t, v.Rooms, append(av.Available, av.Occupied...))
}

func TestRoomAvailabilityUsesConfiguredZone(t *testing.T) {
	table := &fakeTable{records: []Record{{Date: "2024-03-10", Room: "1"}}}
	v := &Views{Table: table, Rooms: []string{"1", "2"}, Location: pet}

	// 02:00 UTC 11 марта — ещё 10 марта в Лиме
	av, err := v.RoomAvailability(context.Background(), time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, av.Occupied)
}

func TestRoomAvailabilityError(t *testing.T) {
	v := &Views{Table: &fakeTable{readErr: errors.New("boom")}, Rooms: []string{"2", "1"}}
	_, err := v.RoomAvailability(context.Background(), time.Now())
	require.Error(t, err)
	assert.Equal(t, []string{"1", "2"}, v.AllAvailable().Available)
}

func TestDailySummary(t *testing.T) {
	var recs []Record
	for i, price := range []string{"S/25", "S/ 30", "$20", "1,200.50", "gratis", "S/40"} {
		recs = append(recs, Record{Date: "2024-03-10", Name: string(rune('A' + i)), Price: price})
	}
	recs = append(recs, Record{Date: "2024-03-11", Price: "S/999"})
	v := &Views{Table: &fakeTable{records: recs}, Location: pet}

	sum, err := v.DailySummary(context.Background(), time.Date(2024, 3, 10, 20, 0, 0, 0, pet))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", sum.Date)
	assert.Equal(t, 6, sum.Count)
	assert.True(t, decimal.RequireFromString("1315.50").Equal(sum.Revenue), sum.Revenue.String())

	recent := sum.Recent(5)
	require.Len(t, recent, 5)
	assert.Equal(t, "B", recent[0].Name)
	assert.Equal(t, "F", recent[4].Name)
}

func TestPriceAmount(t *testing.T) {
	cases := map[string]string{
		"S/35":     "35",
		"S/35.50":  "35.5",
		"$20":      "20",
		"S/1,200":  "1200",
		"sin pago": "0",
		"":         "0",
	}
	for in, want := range cases {
		assert.Equal(t, want, PriceAmount(in).String(), in)
	}
}

func TestDurationCheckOut(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, pet)
	short, _ := durationByKey("short")
	night, _ := durationByKey("overnight")

	assert.Equal(t, time.Date(2025, 1, 1, 1, 30, 0, 0, pet), short.CheckOut(now))
	assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, pet), night.CheckOut(now))
	assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, pet), night.CheckOut(now.Add(-20*time.Hour)))
}
