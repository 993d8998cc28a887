package store

import (
	"context"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
)

// Backend is the snapshot persistence contract shared by the SQLite store
// and the GORM store.
type Backend interface {
	Append(ctx context.Context, snap audit.Snapshot) (audit.Snapshot, error)
	Import(ctx context.Context, snap audit.Snapshot) error
	List(ctx context.Context) ([]audit.Snapshot, error)
	Get(ctx context.Context, id string) (audit.Snapshot, bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

var _ Backend = (*Store)(nil)
