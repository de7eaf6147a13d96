package memory

import (
	"context"
	"sort"
	"sync"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

// MintRecordStore is an in-memory implementation of storage.MintRecordStore.
type MintRecordStore struct {
	mu      sync.RWMutex
	records map[string]*domain.MintRecord // keyed by id
}

// NewMintRecordStore creates a new in-memory mint record store.
func NewMintRecordStore() *MintRecordStore {
	return &MintRecordStore{records: make(map[string]*domain.MintRecord)}
}

// Insert adds a new record. Returns ErrDuplicateKey if id exists.
func (s *MintRecordStore) Insert(_ context.Context, r *domain.MintRecord) error {
	if r == nil || r.ID == "" || !r.Status.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *r
	s.records[r.ID] = &recCopy
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *MintRecordStore) GetByID(_ context.Context, id string) (*domain.MintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.records[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recCopy := *r
	return &recCopy, nil
}

// GetByCandyMachine retrieves all records for a candy machine, ordered by attempted_at ASC.
func (s *MintRecordStore) GetByCandyMachine(_ context.Context, candyMachine string) ([]*domain.MintRecord, error) {
	return s.filter(func(r *domain.MintRecord) bool { return r.CandyMachine == candyMachine }), nil
}

// GetByMinter retrieves all records for a minter wallet, ordered by attempted_at ASC.
func (s *MintRecordStore) GetByMinter(_ context.Context, minter string) ([]*domain.MintRecord, error) {
	return s.filter(func(r *domain.MintRecord) bool { return r.Minter == minter }), nil
}

func (s *MintRecordStore) filter(keep func(*domain.MintRecord) bool) []*domain.MintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MintRecord
	for _, r := range s.records {
		if keep(r) {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AttemptedAt != result[j].AttemptedAt {
			return result[i].AttemptedAt < result[j].AttemptedAt
		}
		return result[i].ID < result[j].ID
	})
	return result
}

var _ storage.MintRecordStore = (*MintRecordStore)(nil)
