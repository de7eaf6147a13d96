package memory

import (
	"context"
	"errors"
	"testing"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

func newSnapshot(cm string, observedAt int64, redeemed uint64) *domain.StatusSnapshot {
	return &domain.StatusSnapshot{
		CandyMachine:   cm,
		Network:        "devnet",
		Version:        domain.VersionV2,
		ItemsAvailable: 10,
		ItemsRedeemed:  redeemed,
		ItemsRemaining: 10 - redeemed,
		Price:          1_000_000_000,
		Ticker:         "SOL",
		ObservedAt:     observedAt,
	}
}

func TestSnapshotStore_InsertAndQuery(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	for _, s := range []*domain.StatusSnapshot{
		newSnapshot("cm1", 3000, 3),
		newSnapshot("cm1", 1000, 1),
		newSnapshot("cm1", 2000, 2),
		newSnapshot("cm2", 1500, 5),
	} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := store.GetByCandyMachine(ctx, "cm1")
	if err != nil {
		t.Fatalf("GetByCandyMachine failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ObservedAt > all[i].ObservedAt {
			t.Errorf("not ordered: %d before %d", all[i-1].ObservedAt, all[i].ObservedAt)
		}
	}

	ranged, err := store.GetByTimeRange(ctx, "cm1", 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("expected 2 snapshots in range, got %d", len(ranged))
	}
}

func TestSnapshotStore_Duplicate(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newSnapshot("cm1", 1000, 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, newSnapshot("cm1", 1000, 2)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if err := store.Insert(ctx, &domain.StatusSnapshot{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
