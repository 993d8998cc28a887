// Package store provides SQLite-backed durable storage for audit snapshots.
//
// The store is an append-only list:
//   - Append assigns an id and creation time and inserts a copy
//   - List, Get read copies back
//   - Delete removes one snapshot and is a no-op for unknown ids
//
// There is no update operation. Snapshots are history.
//
// # Critical Patterns
//
// Copy on the way in and out: items are serialized to JSON TEXT on write and
// decoded into fresh slices on read, so no caller ever shares memory with a
// stored record.
//
// Deterministic listing: List orders by created_at ASC, rowid ASC. Rows with
// a NULL created_at (imported history without a timestamp) sort first and
// load with a zero CreatedAt.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
