package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

const snapshotColumns = `id, created_at, delivery_date, items, total_ordered, total_delivered`

// List returns every snapshot, oldest first.
// Ordering: ORDER BY created_at ASC, rowid ASC. Rows without a timestamp sort
// first, and rows with equal timestamps keep insertion order.
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) List(ctx context.Context) ([]audit.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []audit.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// Get returns the snapshot with the given id.
// Returns (snapshot, true, nil) if found, (zero, false, nil) if not found.
func (s *Store) Get(ctx context.Context, id string) (audit.Snapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id = ?
	`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Snapshot{}, false, nil
	}
	if err != nil {
		return audit.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (audit.Snapshot, error) {
	var (
		snap      audit.Snapshot
		createdAt sql.NullInt64
		itemsJSON string
	)
	err := row.Scan(
		&snap.ID,
		&createdAt,
		&snap.DeliveryDate,
		&itemsJSON,
		&snap.TotalOrdered,
		&snap.TotalDelivered,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Snapshot{}, err
	}
	if err != nil {
		return audit.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	items, err := unmarshalItems(itemsJSON)
	if err != nil {
		return audit.Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	snap.Items = items
	snap.CreatedAt = unmarshalTime(createdAt)
	return snap, nil
}
