// Package order turns decoded order-file rows into an aggregated order map.
package order

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// Fixed column contract of the order file (0-indexed).
const (
	ColArticleID = 0
	ColName      = 1
	ColQuantity  = 9
)

// ErrCodeNoValidRows identifies an order file without a single usable row.
const ErrCodeNoValidRows = "NO_VALID_ROWS"

// ParsingError is fatal for a reconciliation run.
type ParsingError struct {
	Code    string
	Message string
	Rows    int // number of rows inspected
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	return fmt.Sprintf("%s: %s (%d rows inspected)", e.Code, e.Message, e.Rows)
}

// IsParsingError returns true if err wraps a ParsingError.
func IsParsingError(err error) bool {
	var pe *ParsingError
	return errors.As(err, &pe)
}

// CoercionWarning records a quantity cell that could not be read as a number.
// The quantity was treated as 0.
type CoercionWarning struct {
	Sheet     string `json:"sheet"`
	Row       int    `json:"row"`
	ArticleID string `json:"article_id"`
	Value     string `json:"value"`
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("%s row %d: article %s quantity %q is not a number, using 0", w.Sheet, w.Row+1, w.ArticleID, w.Value)
}

// FirstSheet returns the rows belonging to the sheet of the first row.
func FirstSheet(rows []audit.Row) []audit.Row {
	if len(rows) == 0 {
		return rows
	}
	sheet := rows[0].Sheet
	out := make([]audit.Row, 0, len(rows))
	for _, r := range rows {
		if r.Sheet == sheet {
			out = append(out, r)
		}
	}
	return out
}

// Parse aggregates order rows into an OrderMap.
//
// Rows whose id is not numeric or whose name is empty are skipped; a header
// row falls out this way. Quantities of repeated ids are summed. The first
// name seen for an id is kept.
//
// Returns a ParsingError when no row survives.
func Parse(rows []audit.Row) (audit.OrderMap, []CoercionWarning, error) {
	orders := audit.OrderMap{}
	var warnings []CoercionWarning

	for _, row := range rows {
		id := audit.NormalizeText(cellString(row.Cell(ColArticleID)))
		if id == "" || !audit.IsArticleID(id) {
			continue
		}
		name := audit.NormalizeText(cellString(row.Cell(ColName)))
		if name == "" {
			continue
		}

		qty, ok := CoerceQuantity(row.Cell(ColQuantity))
		if !ok {
			warnings = append(warnings, CoercionWarning{
				Sheet:     row.Sheet,
				Row:       row.Index,
				ArticleID: id,
				Value:     cellString(row.Cell(ColQuantity)),
			})
		}
		if qty < 0 {
			qty = 0
		}

		line, seen := orders[id]
		if !seen {
			line = audit.OrderLine{ArticleID: id, Name: name}
		}
		line.OrderedQty += qty
		orders[id] = line
	}

	if len(orders) == 0 {
		return nil, warnings, &ParsingError{
			Code:    ErrCodeNoValidRows,
			Message: "no valid order rows found",
			Rows:    len(rows),
		}
	}
	return orders, warnings, nil
}

// CoerceQuantity converts a quantity cell to a number.
//
// Numeric cells are used as-is. String cells have their decimal comma
// replaced by a period and are parsed as a decimal. The whole cell must be
// a number, so "1.234,5" and "12 stuks" are not read as 1234.5 or 12.
// Anything else, and any non-finite result, is 0. ok is false when a
// non-empty cell had to be coerced to 0.
func CoerceQuantity(cell any) (qty float64, ok bool) {
	switch v := cell.(type) {
	case nil:
		return 0, true
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return finite(f)
	case string:
		return parseDecimal(v)
	default:
		return parseDecimal(fmt.Sprint(v))
	}
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// cellString renders an id or name cell. Whole floats lose their ".0" so
// spreadsheet numbers like 1022.0 read as "1022".
func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
