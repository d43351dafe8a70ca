package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"hotel-bot/api/internal/registration"
)

const sheet = "Resumen"

// DailyWorkbook — XLSX с записями дня и итогами под таблицей.
func DailyWorkbook(sum registration.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("report: style: %w", err)
	}

	for i, h := range registration.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(registration.Columns), 1)
	_ = f.SetCellStyle(sheet, "A1", last, bold)

	row := 2
	for _, rec := range sum.Records {
		for i, v := range rec.Row() {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	row++
	totals := [][2]any{
		{"Fecha", sum.Date},
		{"Total de clientes", sum.Count},
		{"Ingresos totales", sum.Revenue.InexactFloat64()},
	}
	for _, t := range totals {
		label, _ := excelize.CoordinatesToCellName(1, row)
		value, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, label, t[0])
		_ = f.SetCellValue(sheet, value, t[1])
		_ = f.SetCellStyle(sheet, label, label, bold)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "C", 14)
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 32)
	_ = f.SetColWidth(sheet, "G", "J", 14)
	_ = f.SetColWidth(sheet, "K", "K", 40)
	_ = f.SetColWidth(sheet, "L", "L", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: write: %w", err)
	}
	return buf.Bytes(), nil
}
