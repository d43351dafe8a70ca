package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_IDNumber(t *testing.T) {
	cases := map[string]string{
		"1234567":       "1234567",
		"V-12.345.678":  "12345678",
		"1234567890":    "1234567890",
		"123456":        "",
		"12345678901":   "",
		"00000000":      "",
		"NO ENCONTRADO": "",
	}
	for in, want := range cases {
		got, ok := validID(in)
		assert.Equal(t, want != "", ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestValidate_IDNumberLengthAlwaysInRange(t *testing.T) {
	for n := 0; n <= 14; n++ {
		for _, d := range []string{"0", "1", "7"} {
			in := strings.Repeat(d, n)
			f := Validate(RawFields{IDNumber: &in})
			id, ok := f.IDNumber.Get()
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, len(id), 7)
			assert.LessOrEqual(t, len(id), 10)
			assert.NotEqual(t, "00000000", id)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	ok := map[string]string{
		"15/03/1990": "15/03/1990",
		"1-3-1990":   "01/03/1990",
		"15.03.1990": "15/03/1990",
		"15 03 1990": "15/03/1990",
		"15031990":   "15/03/1990",
		"1990-03-15": "15/03/1990",
	}
	for in, want := range ok {
		got, valid := NormalizeDate(in)
		assert.True(t, valid, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"32/01/1990", "15/13/1990", "00/01/1990", "NULL", "marzo 1990", "1990/03/15"} {
		_, valid := NormalizeDate(in)
		assert.False(t, valid, in)
	}
}

func TestValidate_Name(t *testing.T) {
	n, ok := validName("garcia lopez, juan.")
	assert.True(t, ok)
	assert.Equal(t, "GARCIA LOPEZ JUAN", n)

	n, ok = validName("Peña Núñez")
	assert.True(t, ok)
	assert.Equal(t, "PEÑA NÚÑEZ", n)

	for _, bad := range []string{"N/A", "null", "Al", " - ", ""} {
		_, ok := validName(bad)
		assert.False(t, ok, bad)
	}
}

func TestValidate_Nationality(t *testing.T) {
	cases := map[string]Nationality{
		"Peruana":    Peruvian,
		"venezolano": Venezuelan,
		"COLOMBIAN":  Colombian,
		"Ecuador":    Ecuadorian,
	}
	for in, want := range cases {
		got, ok := validNationality(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"NULL", "PE", "MARCIANA", ""} {
		_, ok := validNationality(bad)
		assert.False(t, ok, bad)
	}
}

func TestMatchNationality_TableOrderWins(t *testing.T) {
	n, ok := MatchNationality("República Bolivariana de Venezuela")
	assert.True(t, ok)
	assert.Equal(t, Venezuelan, n)

	// обе страны в тексте: приоритет у строки таблицы, а не у позиции в тексте
	n, _ = MatchNationality("COLOMBIA ... PERU")
	assert.Equal(t, Peruvian, n)

	_, ok = MatchNationality("PERUGIA")
	assert.False(t, ok, "whole words only")

	assert.Equal(t, "PERUANA", Peruvian.Label())
}
