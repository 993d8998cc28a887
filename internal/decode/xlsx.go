package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// XLSX decodes the first worksheet of an Excel workbook.
// Cells are raw (unformatted) strings; empty cells are "".
type XLSX struct{}

// DecodeRows implements RowDecoder.
func (XLSX) DecodeRows(ctx context.Context, doc Document) ([]audit.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w: %v", doc.Name, ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets: %w", doc.Name, ErrMalformed)
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, doc.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]audit.Row, 0, len(raw))
	for i, cols := range raw {
		cells := make([]any, len(cols))
		for j, c := range cols {
			cells[j] = c
		}
		rows = append(rows, audit.Row{Sheet: sheet, Index: i, Cells: cells})
	}
	return rows, nil
}
