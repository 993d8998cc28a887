package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

func TestMarshalItems_NilIsEmptyArray(t *testing.T) {
	got, err := marshalItems(nil)
	if err != nil {
		t.Fatalf("marshalItems(nil) failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("marshalItems(nil) = %q, want %q", got, "[]")
	}
}

func TestUnmarshalItems_EmptyInputs(t *testing.T) {
	for _, in := range []string{"", "[]"} {
		got, err := unmarshalItems(in)
		if err != nil {
			t.Fatalf("unmarshalItems(%q) failed: %v", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("unmarshalItems(%q) = %#v, want empty slice", in, got)
		}
	}
}

func TestUnmarshalItems_Invalid(t *testing.T) {
	if _, err := unmarshalItems("{not json"); err == nil {
		t.Error("unmarshalItems() should reject invalid JSON")
	}
}

func TestMarshalItems_FractionalQuantities(t *testing.T) {
	items := []audit.AuditItem{{ArticleID: "1", Name: "x", Ordered: 2.5, Delivered: 0}}
	got, err := marshalItems(items)
	if err != nil {
		t.Fatalf("marshalItems() failed: %v", err)
	}
	want := `[{"article_id":"1","name":"x","ordered":2.5,"delivered":0}]`
	if got != want {
		t.Errorf("marshalItems() = %s, want %s", got, want)
	}
}

func TestMarshalTime(t *testing.T) {
	if v := marshalTime(time.Time{}); v.Valid {
		t.Errorf("marshalTime(zero) = %+v, want NULL", v)
	}

	ts := time.Date(2024, 3, 12, 8, 15, 30, 250_000_000, time.UTC)
	v := marshalTime(ts)
	if !v.Valid {
		t.Fatal("marshalTime(ts) is NULL")
	}
	if got := unmarshalTime(v); !got.Equal(ts) {
		t.Errorf("unmarshalTime(marshalTime(ts)) = %v, want %v", got, ts)
	}
	if got := unmarshalTime(sql.NullInt64{}); !got.IsZero() {
		t.Errorf("unmarshalTime(NULL) = %v, want zero", got)
	}
}
