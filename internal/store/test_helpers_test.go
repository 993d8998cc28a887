package store

import (
	"path/filepath"
	"testing"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/testutil"
)

// createTestStore creates a new file-backed store with deterministic ids and
// creation times.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDGenerator("snap")),
		WithClock(testutil.NewDeterministicClock()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSnapshot creates a snapshot with two items and no id.
func createTestSnapshot(date string) audit.Snapshot {
	return audit.Snapshot{
		DeliveryDate: date,
		Items: []audit.AuditItem{
			{ArticleID: "1001", Name: "Badlaken", Ordered: 10, Delivered: 8},
			{ArticleID: "1002", Name: "Handdoek", Ordered: 5, Delivered: 5},
		},
	}
}
