package tabular

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// Sheet holds every exported table; readers look for it by name.
const Sheet = "Sheet1"

type xlsxWriter struct{}

func (xlsxWriter) ext() string { return FormatXLSX }

func (xlsxWriter) write(path string, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if idx, err := f.GetSheetIndex(Sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(Sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	// Header row
	header := make([]interface{}, len(table.Columns))
	for i, h := range table.Columns {
		header[i] = h
	}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	// Data rows
	for r, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = xlsxCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(Sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// xlsxCell keeps numbers numeric. NaN becomes a blank cell and infinities are
// written as text.
func xlsxCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		if math.IsInf(x, 0) {
			return FormatCell(x)
		}
		return x
	case string, int, int64, int32, uint, uint64, float32, bool:
		return x
	default:
		return FormatCell(x)
	}
}
