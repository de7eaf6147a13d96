package memory

import (
	"context"
	"sort"
	"sync"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

// snapshotKey is the uniqueness key of a status snapshot.
type snapshotKey struct {
	candyMachine string
	observedAt   int64
}

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]*domain.StatusSnapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[snapshotKey]*domain.StatusSnapshot)}
}

// Insert adds a snapshot. Returns ErrDuplicateKey if (candy_machine, observed_at) exists.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.StatusSnapshot) error {
	if snap == nil || snap.CandyMachine == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := snapshotKey{snap.CandyMachine, snap.ObservedAt}
	if _, exists := s.snapshots[k]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	s.snapshots[k] = &snapCopy
	return nil
}

// GetByCandyMachine retrieves all snapshots for a candy machine, ordered by observed_at ASC.
func (s *SnapshotStore) GetByCandyMachine(_ context.Context, candyMachine string) ([]*domain.StatusSnapshot, error) {
	return s.filter(candyMachine, func(int64) bool { return true }), nil
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(_ context.Context, candyMachine string, start, end int64) ([]*domain.StatusSnapshot, error) {
	return s.filter(candyMachine, func(ts int64) bool { return ts >= start && ts <= end }), nil
}

func (s *SnapshotStore) filter(candyMachine string, inRange func(int64) bool) []*domain.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StatusSnapshot
	for k, snap := range s.snapshots {
		if k.candyMachine == candyMachine && inRange(k.observedAt) {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})
	return result
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
