package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"hotel-bot/api/internal/extract"
)

func loadLabels(path string) (map[string]extract.Fields, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]extract.Fields
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	return out, nil
}

var accuracyFields = []string{"full_name", "id_number", "birth_date", "nationality"}

// accuracy считает совпадения по каждому полю; отсутствие поля в обоих — тоже совпадение.
type accuracy struct {
	total int
	hits  map[string]int
}

func newAccuracy() *accuracy { return &accuracy{hits: map[string]int{}} }

func (a *accuracy) add(want, got extract.Fields) {
	a.total++
	eq := map[string]bool{
		"full_name":   want.FullName == got.FullName,
		"id_number":   want.IDNumber == got.IDNumber,
		"birth_date":  want.BirthDate == got.BirthDate,
		"nationality": want.Nationality == got.Nationality,
	}
	for _, f := range accuracyFields {
		if eq[f] {
			a.hits[f]++
		}
	}
}

func (a *accuracy) rate(field string) float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.hits[field]) / float64(a.total)
}

func (a *accuracy) print(w io.Writer) {
	fmt.Fprintf(w, "labeled photos: %d\n", a.total)
	for _, f := range accuracyFields {
		fmt.Fprintf(w, "  %-12s %d/%d (%.0f%%)\n", f, a.hits[f], a.total, 100*a.rate(f))
	}
}
