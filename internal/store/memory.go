// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the Snapshots interface.
// This is a lightweight persistence layer used for ephemeral sessions,
// primarily in development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores Snapshot values keyed by player id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// memory is an in-memory map-based Snapshots implementation.
type memory struct {
	mu    sync.RWMutex        // guards snaps map
	snaps map[string]Snapshot // keyed by player id
}

// NewMemory constructs a new in-memory Snapshots store.
func NewMemory() Snapshots {
	return &memory{snaps: make(map[string]Snapshot)}
}

// Save overwrites the snapshot for key.
func (m *memory) Save(ctx context.Context, key string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

// Load returns a copy of the stored snapshot or ErrNoSnapshot.
func (m *memory) Load(ctx context.Context, key string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.snaps[key]; ok {
		cp := s
		cp.FoundWords = append([]string(nil), s.FoundWords...)
		return &cp, nil
	}
	return nil, ErrNoSnapshot
}

// Clear removes the snapshot for key.
func (m *memory) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}
