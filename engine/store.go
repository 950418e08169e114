/*
store.go - Snapshot persistence interface for raw allocation records

PURPOSE:
  The engine itself never fetches or persists anything; it is a pure
  function of (records, today). The boundary layer, however, keeps the
  latest raw snapshot from the backend so dashboards can be recomputed
  without refetching. RecordStore is that contract.

SNAPSHOT SEMANTICS:
  Replace is all-or-nothing: the new snapshot atomically supersedes the
  previous one. Reads always see a complete snapshot, never a partial
  ingest. There is no record-level update; the backend is the source of
  truth and the store is a cache of its last response.

IMPLEMENTATIONS:
  - engine/store/memory.go: in-memory, for tests and dev
  - store/sqlite/sqlite.go: production SQLite
*/
package engine

import "context"

// RecordStore persists raw allocation snapshots for the boundary layer.
type RecordStore interface {
	// Replace atomically swaps the stored snapshot for records.
	Replace(ctx context.Context, records []*RawAllocationRecord) error

	// LoadAll returns the current snapshot in stored order.
	LoadAll(ctx context.Context) ([]*RawAllocationRecord, error)

	// LoadByEmployee returns the snapshot filtered to one employee.
	LoadByEmployee(ctx context.Context, employeeID int64) ([]*RawAllocationRecord, error)

	// Close releases underlying resources.
	Close() error
}
