package registration

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// PhotoStore — файловое хранилище копий документов.
type PhotoStore interface {
	Upload(ctx context.Context, data []byte, name string) (Photo, error)
	List(ctx context.Context, limit int) ([]Photo, error)
	Delete(ctx context.Context, id string) error
}

// PhotoFilename: DNI_<номер>[_<имя>]_<YYYYMMDD_HHMMSS>.jpg.
// В имени остаются буквы, цифры, '-' и '_'; пробелы заменяются на '_'.
func PhotoFilename(idNumber, clientName string, at time.Time) string {
	if idNumber == "" {
		idNumber = "SIN_NUMERO"
	}
	parts := []string{"DNI", idNumber}
	if name := sanitizeName(clientName); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, at.Format("20060102_150405"))
	return strings.Join(parts, "_") + ".jpg"
}

func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), "_")
}
