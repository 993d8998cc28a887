package harness

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Items    []audit.AuditItem // Full item list for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Items) > 0 {
		fmt.Fprintf(&buf, "\nItems:\n")
		for i, it := range e.Items {
			fmt.Fprintf(&buf, "  [%d] %s %q ordered=%s delivered=%s %s\n",
				i+1, it.ArticleID, it.Name, formatQty(it.Ordered), formatQty(it.Delivered), it.Status())
		}
	}

	return buf.String()
}

// itemFields exposes an item as the field map used by item assertions.
func itemFields(it audit.AuditItem) map[string]interface{} {
	return map[string]interface{}{
		"name":       it.Name,
		"ordered":    it.Ordered,
		"delivered":  it.Delivered,
		"difference": it.Difference(),
		"status":     string(it.Status()),
	}
}

func findItem(items []audit.AuditItem, id string) (audit.AuditItem, bool) {
	for _, it := range items {
		if it.ArticleID == id {
			return it, true
		}
	}
	return audit.AuditItem{}, false
}

// assertItem checks that the article exists and matches the expected fields
// (subset match).
func assertItem(items []audit.AuditItem, assertion Assertion) error {
	it, ok := findItem(items, assertion.Article)
	if !ok {
		return &AssertionError{
			Type:     AssertItem,
			Expected: fmt.Sprintf("item %s", assertion.Article),
			Actual:   "not found",
			Items:    items,
		}
	}

	fields := itemFields(it)
	keys := sortedKeys(assertion.Expect)
	for _, key := range keys {
		actual, exists := fields[key]
		if !exists {
			return fmt.Errorf("item assertion: unknown field %q", key)
		}
		if !stateValuesEqual(assertion.Expect[key], actual) {
			return &AssertionError{
				Type:     AssertItem,
				Expected: fmt.Sprintf("item %s %s=%v", assertion.Article, key, assertion.Expect[key]),
				Actual:   fmt.Sprintf("%s=%v", key, actual),
				Items:    items,
			}
		}
	}
	return nil
}

// assertItemAbsent checks that no item exists for the article.
func assertItemAbsent(items []audit.AuditItem, assertion Assertion) error {
	if it, ok := findItem(items, assertion.Article); ok {
		return &AssertionError{
			Type:     AssertItemAbsent,
			Expected: fmt.Sprintf("no item %s", assertion.Article),
			Actual:   fmt.Sprintf("found %q", it.Name),
			Items:    items,
		}
	}
	return nil
}

// assertItemCount checks the exact number of items.
func assertItemCount(items []audit.AuditItem, assertion Assertion) error {
	if len(items) != assertion.Count {
		return &AssertionError{
			Type:     AssertItemCount,
			Expected: fmt.Sprintf("%d items", assertion.Count),
			Actual:   fmt.Sprintf("%d items", len(items)),
			Items:    items,
		}
	}
	return nil
}

// assertItemsOrder checks that the articles appear in the specified order.
// Articles don't need to be adjacent.
func assertItemsOrder(items []audit.AuditItem, assertion Assertion) error {
	// Step 1: Find position of each expected article
	positions := make(map[string]int)
	for i, it := range items {
		positions[it.ArticleID] = i + 1 // 1-indexed for readability
	}

	// Step 2: Verify all articles found
	for _, id := range assertion.Articles {
		if positions[id] == 0 {
			return &AssertionError{
				Type:     AssertItemsOrder,
				Expected: fmt.Sprintf("all articles present: %v", assertion.Articles),
				Actual:   fmt.Sprintf("missing article: %s", id),
				Items:    items,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Articles); i++ {
		prev := assertion.Articles[i-1]
		curr := assertion.Articles[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertItemsOrder,
				Expected: fmt.Sprintf("articles in order: %v", assertion.Articles),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Items: items,
			}
		}
	}

	return nil
}

// assertSkipped checks the exact list of skipped documents.
func assertSkipped(result *Result, assertion Assertion) error {
	var got []string
	for _, w := range result.Run.Warnings {
		got = append(got, w.Document)
	}
	want := assertion.Documents
	if len(got) == 0 && len(want) == 0 {
		return nil
	}
	if !reflect.DeepEqual(got, want) {
		return &AssertionError{
			Type:     AssertSkipped,
			Expected: fmt.Sprintf("skipped %v", want),
			Actual:   fmt.Sprintf("skipped %v", got),
		}
	}
	return nil
}

// assertDeliveryDate checks the reported delivery date.
func assertDeliveryDate(result *Result, assertion Assertion) error {
	if result.Run.DeliveryDate != assertion.Value {
		return &AssertionError{
			Type:     AssertDeliveryDate,
			Expected: assertion.Value,
			Actual:   result.Run.DeliveryDate,
		}
	}
	return nil
}

// assertFinalState checks if the store table contains expected values.
// Queries the table with parameterized SQL and validates expected values
// using subset semantics.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if assertion.Table == "" {
		return fmt.Errorf("final_state assertion requires table name")
	}

	// Validate table name to prevent SQL injection (identifiers can't be parameterized)
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	row, err := scanFirstRow(rows)
	if err != nil {
		return err
	}
	if row == nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	for _, key := range sortedKeys(assertion.Expect) {
		actual, exists := row[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %s in %s", key, assertion.Table),
				Actual:   "column not found",
			}
		}
		if !stateValuesEqual(assertion.Expect[key], actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s.%s = %v", assertion.Table, key, assertion.Expect[key]),
				Actual:   fmt.Sprintf("%v", actual),
			}
		}
	}
	return nil
}

// scanFirstRow returns the first row as a column map, or nil when empty.
func scanFirstRow(rows *sql.Rows) (map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	if !rows.Next() {
		return nil, rows.Err()
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
		} else {
			row[col] = values[i]
		}
	}
	return row, nil
}

// buildWhereClause creates a parameterized WHERE clause from a map.
// Returns the SQL fragment and argument slice.
//
// Security: Column names are validated against validIdentifier pattern.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		// Validate column name to prevent SQL injection
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML value to a SQL-compatible value.
func toSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string, int, int64, float64, bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares an expected YAML value with an actual value.
// Numbers compare by value regardless of Go type: YAML yields int for 8 and
// float64 for 8.5, SQLite returns int64 or float64.
func stateValuesEqual(expected, actual interface{}) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	switch exp := expected.(type) {
	case string:
		if actualStr, ok := actual.(string); ok {
			return exp == actualStr
		}
		return false
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		// SQLite stores booleans as integers
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	if result.Run == nil {
		return []string{"no run result to assert on"}
	}
	items := result.Run.Items

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertItem:
			err = assertItem(items, assertion)
		case AssertItemAbsent:
			err = assertItemAbsent(items, assertion)
		case AssertItemCount:
			err = assertItemCount(items, assertion)
		case AssertItemsOrder:
			err = assertItemsOrder(items, assertion)
		case AssertSkipped:
			err = assertSkipped(result, assertion)
		case AssertDeliveryDate:
			err = assertDeliveryDate(result, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// formatQty renders a quantity the way assertion messages show it.
func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
