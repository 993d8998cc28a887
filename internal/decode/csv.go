package decode

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// CSV decodes a delimited order export. The delimiter is sniffed from the
// first line: ';' when it occurs more often than ',' (Dutch locale exports),
// ',' otherwise. A UTF-8 byte order mark is dropped.
type CSV struct{}

// DecodeRows implements RowDecoder.
func (CSV) DecodeRows(ctx context.Context, doc Document) ([]audit.Row, error) {
	data := bytes.TrimPrefix(doc.Data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	sheet := sheetName(doc)
	var rows []audit.Row
	for i := 0; ; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w: %v", doc.Name, ErrMalformed, err)
		}
		cells := make([]any, len(rec))
		for j, c := range rec {
			cells[j] = c
		}
		rows = append(rows, audit.Row{Sheet: sheet, Index: i, Cells: cells})
	}
	if rows == nil {
		rows = []audit.Row{}
	}
	return rows, nil
}

func sniffDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
