package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// marshalItems converts audit items to JSON TEXT for storage.
// HTML escaping is disabled so article names are stored as written.
func marshalItems(items []audit.AuditItem) (string, error) {
	if items == nil {
		items = []audit.AuditItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalItems parses JSON TEXT into a fresh item slice.
func unmarshalItems(data string) ([]audit.AuditItem, error) {
	items := []audit.AuditItem{}
	if data == "" || data == "[]" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// marshalTime stores t as epoch milliseconds; the zero time is NULL.
func marshalTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

// unmarshalTime is the inverse of marshalTime. Times load in UTC.
func unmarshalTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64).UTC()
}
