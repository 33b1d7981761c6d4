// Package memory provides in-memory store implementations for tests and
// runs without a database file.
package memory

import (
	"context"
	"sync"

	"github.com/bodygraph/gatesdb/ports"
)

// SnapshotStore is an in-memory implementation of ports.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]ports.Snapshot // by ID
	order     []string                  // IDs in insertion order
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]ports.Snapshot),
	}
}

// Save stores s unless it repeats the latest checksum of its locale.
func (s *SnapshotStore) Save(ctx context.Context, snap ports.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if latest, ok := s.latestLocked(snap.Locale); ok && latest.Checksum == snap.Checksum {
		return false, nil
	}

	snap.Document = append([]byte(nil), snap.Document...)
	s.snapshots[snap.ID] = snap
	s.order = append(s.order, snap.ID)
	return true, nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(ctx context.Context, id string) (ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return ports.Snapshot{}, ports.ErrNotFound
	}
	return snap, nil
}

// Latest returns the most recently saved snapshot of a locale.
func (s *SnapshotStore) Latest(ctx context.Context, locale string) (ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.latestLocked(locale)
	if !ok {
		return ports.Snapshot{}, ports.ErrNotFound
	}
	return snap, nil
}

// List returns snapshots newest first, without documents.
func (s *SnapshotStore) List(ctx context.Context, locale string, limit int) ([]ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ports.Snapshot
	for i := len(s.order) - 1; i >= 0; i-- {
		snap := s.snapshots[s.order[i]]
		if locale != "" && snap.Locale != locale {
			continue
		}
		snap.Document = nil
		result = append(result, snap)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *SnapshotStore) latestLocked(locale string) (ports.Snapshot, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if snap := s.snapshots[s.order[i]]; snap.Locale == locale {
			return snap, true
		}
	}
	return ports.Snapshot{}, false
}

// Ensure interface compliance.
var _ ports.SnapshotStore = (*SnapshotStore)(nil)
