// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/allocation-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []*engine.RawAllocationRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

// Replace swaps the snapshot. All-or-nothing by construction.
func (m *Memory) Replace(_ context.Context, records []*engine.RawAllocationRecord) error {
	snapshot := make([]*engine.RawAllocationRecord, len(records))
	copy(snapshot, records)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = snapshot
	return nil
}

func (m *Memory) LoadAll(_ context.Context) ([]*engine.RawAllocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*engine.RawAllocationRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) LoadByEmployee(_ context.Context, employeeID int64) ([]*engine.RawAllocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*engine.RawAllocationRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ engine.RecordStore = (*Memory)(nil)
