package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"hotel-bot/api/internal/registration"
)

// CheckoutColumn — 13-я колонка, заполняется командой /salida.
const CheckoutColumn = "Hora Salida Real"

// Store — таблица регистраций в Google Sheets.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheet         string
	loc           *time.Location
}

func New(ctx context.Context, credentialsFile, spreadsheetID, sheet string, loc *time.Location) (*Store, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, sheet, loc), nil
}

func NewWithService(svc *gsheets.Service, spreadsheetID, sheet string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, loc: loc}
}

func header() []string {
	return append(append([]string(nil), registration.Columns...), CheckoutColumn)
}

func (s *Store) a1(cols string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(s.sheet, "'", "''"), cols)
}

func (s *Store) lastColumn() string { return columnLetter(len(header()) - 1) }

// EnsureSheet создаёт лист и строку заголовков, если их нет.
func (s *Store) EnsureSheet(ctx context.Context) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: get spreadsheet: %w", err)
	}
	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheet {
			exists = true
			break
		}
	}
	if !exists {
		req := &gsheets.BatchUpdateSpreadsheetRequest{Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: s.sheet}},
		}}}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("sheets: add sheet %q: %w", s.sheet, err)
		}
		log.Infof("sheets: created worksheet %q", s.sheet)
	}

	rng := s.a1("A1:" + s.lastColumn() + "1")
	cur, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header: %w", err)
	}
	if len(cur.Values) > 0 && len(cur.Values[0]) > 0 {
		return nil
	}
	row := make([]interface{}, 0, len(header()))
	for _, h := range header() {
		row = append(row, h)
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, rec registration.Record) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{rec.Row()}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A:L"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append: %w", err)
	}
	return nil
}

func (s *Store) rows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A:"+s.lastColumn())).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read: %w", err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = fmt.Sprint(c)
		}
		out = append(out, cells)
	}
	return out, nil
}

// All — все записи; первая строка листа считается заголовком.
func (s *Store) All(ctx context.Context) ([]registration.Record, error) {
	rows, err := s.rows(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	out := make([]registration.Record, 0, len(rows)-1)
	for _, r := range rows[1:] {
		out = append(out, registration.RecordFromRow(rows[0], r))
	}
	return out, nil
}

// UpdateCheckout пишет время фактического выезда в первую строку с этим номером без выезда.
func (s *Store) UpdateCheckout(ctx context.Context, idNumber string, at time.Time) (bool, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return false, err
	}
	rowNum, col, ok := findOpenRow(rows, idNumber)
	if !ok {
		return false, nil
	}
	cell := s.a1(fmt.Sprintf("%s%d", columnLetter(col), rowNum))
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, &gsheets.ValueRange{
		Values: [][]interface{}{{at.In(s.loc).Format("15:04")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("sheets: update checkout: %w", err)
	}
	return true, nil
}

// findOpenRow возвращает номер строки листа (с 1) и индекс колонки выезда.
func findOpenRow(rows [][]string, idNumber string) (int, int, bool) {
	if len(rows) == 0 {
		return 0, 0, false
	}
	idCol, outCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "DNI":
			idCol = i
		case CheckoutColumn:
			outCol = i
		}
	}
	if idCol < 0 {
		return 0, 0, false
	}
	if outCol < 0 {
		outCol = len(header()) - 1
	}
	cell := func(r []string, i int) string {
		if i < len(r) {
			return strings.TrimSpace(r[i])
		}
		return ""
	}
	for i, r := range rows[1:] {
		if cell(r, idCol) == idNumber && cell(r, outCol) == "" {
			return i + 2, outCol, true
		}
	}
	return 0, 0, false
}

// columnLetter: 0 -> A, 25 -> Z, 26 -> AA.
func columnLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}
