package store

import (
	"context"
	"fmt"
	"time"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// Append stores a copy of snap under a freshly generated id and the current
// time, and returns the stored copy.
//
// Any ID or CreatedAt on the input is replaced. An empty DeliveryDate is
// stored as audit.UnknownDeliveryDate. When both totals are zero they are
// computed from the items. Existing rows are never touched.
func (s *Store) Append(ctx context.Context, snap audit.Snapshot) (audit.Snapshot, error) {
	rec := Prepare(snap, s.ids.Generate(), s.clock.Now())
	if err := s.insert(ctx, rec); err != nil {
		return audit.Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}
	return rec.Clone(), nil
}

// Import stores snap verbatim, keeping its ID and CreatedAt (a zero
// CreatedAt is stored as NULL). Used to migrate history between stores.
// Importing an id that already exists is an error.
func (s *Store) Import(ctx context.Context, snap audit.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("import snapshot: id is required")
	}
	rec := Prepare(snap, snap.ID, snap.CreatedAt)
	if err := s.insert(ctx, rec); err != nil {
		return fmt.Errorf("import snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Delete removes the snapshot with the given id.
// Deleting an unknown id is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, rec audit.Snapshot) error {
	itemsJSON, err := marshalItems(rec.Items)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, created_at, delivery_date, items, total_ordered, total_delivered, schema_version, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		marshalTime(rec.CreatedAt),
		rec.DeliveryDate,
		itemsJSON,
		rec.TotalOrdered,
		rec.TotalDelivered,
		audit.SchemaVersion,
		audit.EngineVersion,
	)
	return err
}

// Prepare builds the record a backend persists for snap: a deep copy with
// the given id and creation time, a defaulted delivery date and totals.
// Shared by every snapshot backend.
func Prepare(snap audit.Snapshot, id string, createdAt time.Time) audit.Snapshot {
	rec := snap.Clone()
	rec.ID = id
	rec.CreatedAt = createdAt
	if rec.DeliveryDate == "" {
		rec.DeliveryDate = audit.UnknownDeliveryDate
	}
	if rec.TotalOrdered == 0 && rec.TotalDelivered == 0 {
		rec.TotalOrdered, rec.TotalDelivered = audit.SumItems(rec.Items)
	}
	return rec
}
