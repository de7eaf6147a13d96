package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

func TestSnapshotStore_InsertAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	for i, observedAt := range []int64{3000, 1000, 2000} {
		err := store.Insert(ctx, &domain.StatusSnapshot{
			CandyMachine:   "cm-1",
			Network:        "devnet",
			Version:        domain.VersionV3,
			ItemsAvailable: 100,
			ItemsRedeemed:  uint64(i),
			ItemsRemaining: 100 - uint64(i),
			Price:          500_000_000,
			Ticker:         "SOL",
			ObservedAt:     observedAt,
		})
		require.NoError(t, err)
	}

	got, err := store.GetByCandyMachine(ctx, "cm-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1000), got[0].ObservedAt)
	assert.Equal(t, int64(3000), got[2].ObservedAt)
	assert.Equal(t, domain.VersionV3, got[0].Version)
	assert.Equal(t, uint64(500_000_000), got[0].Price)

	ranged, err := store.GetByTimeRange(ctx, "cm-1", 1500, 3000)
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	none, err := store.GetByCandyMachine(ctx, "cm-other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSnapshotStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	snap := &domain.StatusSnapshot{CandyMachine: "cm-1", Version: domain.VersionV2, Ticker: "SOL", ObservedAt: 1000}
	require.NoError(t, store.Insert(ctx, snap))
	assert.ErrorIs(t, store.Insert(ctx, snap), storage.ErrDuplicateKey)
	assert.ErrorIs(t, store.Insert(ctx, &domain.StatusSnapshot{}), storage.ErrInvalidInput)
}
