// Package gormstore persists audit snapshots through GORM, so the history can
// live in PostgreSQL when several workstations share one database.
//
// Semantics match package store: append-only, copies in and out, listing by
// creation time with undated records first and insertion order breaking ties.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/audit"
	"github.com/LarsKohler/Sanadome-HRMS-sub000/internal/store"
)

// snapshotRecord is the audit_snapshots row.
type snapshotRecord struct {
	Seq            uint       `gorm:"primaryKey;autoIncrement"`
	SnapshotID     string     `gorm:"column:snapshot_id;size:64;uniqueIndex;not null"`
	Created        *time.Time `gorm:"column:created_at;index"`
	DeliveryDate   string     `gorm:"size:32;not null"`
	Items          string     `gorm:"type:text;not null"`
	TotalOrdered   float64    `gorm:"not null"`
	TotalDelivered float64    `gorm:"not null"`
	SchemaVersion  string     `gorm:"size:8;not null"`
	EngineVersion  string     `gorm:"size:16;not null"`
}

func (snapshotRecord) TableName() string { return "audit_snapshots" }

// Store is a GORM-backed snapshot store.
type Store struct {
	db    *gorm.DB
	ids   store.IDGenerator
	clock store.Clock
}

var _ store.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the snapshot id generator (default UUIDv7).
func WithIDGenerator(g store.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(c store.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// IsPostgresDSN reports whether dsn names a PostgreSQL database.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// OpenPostgres connects to PostgreSQL and migrates the schema.
func OpenPostgres(dsn string, opts ...Option) (*Store, error) {
	return Open(postgres.Open(dsn), opts...)
}

// Open connects through any GORM dialector and migrates the schema.
func Open(dialector gorm.Dialector, opts ...Option) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &Store{db: db, ids: store.UUIDv7Generator{}, clock: store.SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append stores a copy of snap under a fresh id and the current time.
func (s *Store) Append(ctx context.Context, snap audit.Snapshot) (audit.Snapshot, error) {
	rec := store.Prepare(snap, s.ids.Generate(), s.clock.Now())
	if err := s.insert(ctx, rec); err != nil {
		return audit.Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}
	return rec.Clone(), nil
}

// Import stores snap verbatim, keeping its ID and CreatedAt.
func (s *Store) Import(ctx context.Context, snap audit.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("import snapshot: id is required")
	}
	rec := store.Prepare(snap, snap.ID, snap.CreatedAt)
	if err := s.insert(ctx, rec); err != nil {
		return fmt.Errorf("import snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Delete removes a snapshot. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("snapshot_id = ?", id).Delete(&snapshotRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// List returns every snapshot, oldest first. Undated records sort first.
func (s *Store) List(ctx context.Context) ([]audit.Snapshot, error) {
	var records []snapshotRecord
	err := s.db.WithContext(ctx).
		Order("created_at IS NOT NULL").
		Order("created_at").
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}

	snapshots := make([]audit.Snapshot, 0, len(records))
	for _, rec := range records {
		snap, err := rec.snapshot()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// Get returns the snapshot with the given id, if present.
func (s *Store) Get(ctx context.Context, id string) (audit.Snapshot, bool, error) {
	var rec snapshotRecord
	err := s.db.WithContext(ctx).Where("snapshot_id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return audit.Snapshot{}, false, nil
	}
	if err != nil {
		return audit.Snapshot{}, false, fmt.Errorf("query snapshot: %w", err)
	}
	snap, err := rec.snapshot()
	if err != nil {
		return audit.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&snapshotRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return int(n), nil
}

func (s *Store) insert(ctx context.Context, snap audit.Snapshot) error {
	items, err := json.Marshal(snap.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	rec := snapshotRecord{
		SnapshotID:     snap.ID,
		DeliveryDate:   snap.DeliveryDate,
		Items:          string(items),
		TotalOrdered:   snap.TotalOrdered,
		TotalDelivered: snap.TotalDelivered,
		SchemaVersion:  audit.SchemaVersion,
		EngineVersion:  audit.EngineVersion,
	}
	if !snap.CreatedAt.IsZero() {
		t := snap.CreatedAt.UTC()
		rec.Created = &t
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (r snapshotRecord) snapshot() (audit.Snapshot, error) {
	items := []audit.AuditItem{}
	if r.Items != "" {
		if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
			return audit.Snapshot{}, fmt.Errorf("snapshot %s: unmarshal items: %w", r.SnapshotID, err)
		}
	}
	snap := audit.Snapshot{
		ID:             r.SnapshotID,
		DeliveryDate:   r.DeliveryDate,
		Items:          items,
		TotalOrdered:   r.TotalOrdered,
		TotalDelivered: r.TotalDelivered,
	}
	if r.Created != nil {
		snap.CreatedAt = r.Created.UTC()
	}
	return snap, nil
}
