package storage

import (
	"context"

	"mvcm/internal/domain"
)

// Well-known preference keys.
const (
	// KeyNetwork holds the selected cluster.
	KeyNetwork = "network"

	// KeyWalletNFTs caches the connected wallet's NFTs; cleared on disconnect.
	KeyWalletNFTs = "walletCmdNfts"
)

// PreferenceStore is a small persistent key/value store for user preferences.
type PreferenceStore interface {
	// Get returns the value stored under key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MintRecordStore provides access to mint_records storage.
type MintRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.MintRecord) error

	// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.MintRecord, error)

	// GetByCandyMachine retrieves all records for a candy machine, ordered by attempted_at ASC.
	GetByCandyMachine(ctx context.Context, candyMachine string) ([]*domain.MintRecord, error)

	// GetByMinter retrieves all records for a minter wallet, ordered by attempted_at ASC.
	GetByMinter(ctx context.Context, minter string) ([]*domain.MintRecord, error)
}

// SnapshotStore provides access to status_snapshots storage.
type SnapshotStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if (candy_machine, observed_at) exists.
	Insert(ctx context.Context, s *domain.StatusSnapshot) error

	// GetByCandyMachine retrieves all snapshots for a candy machine, ordered by observed_at ASC.
	GetByCandyMachine(ctx context.Context, candyMachine string) ([]*domain.StatusSnapshot, error)

	// GetByTimeRange retrieves snapshots within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, candyMachine string, start, end int64) ([]*domain.StatusSnapshot, error)
}
