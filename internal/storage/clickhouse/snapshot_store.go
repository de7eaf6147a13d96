package clickhouse

import (
	"context"
	"fmt"
	"time"

	"mvcm/internal/domain"
	"mvcm/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a snapshot. MergeTree does not enforce keys, so uniqueness of
// (candy_machine, observed_at) is checked before the insert.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.StatusSnapshot) (err error) {
	if snap == nil || snap.CandyMachine == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observe("insert_snapshot", start, err) }()

	exists, err := s.exists(ctx, snap.CandyMachine, snap.ObservedAt)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO status_snapshots (
			candy_machine, network, version, items_available, items_redeemed,
			items_remaining, price, ticker, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		snap.CandyMachine, snap.Network, string(snap.Version),
		snap.ItemsAvailable, snap.ItemsRedeemed, snap.ItemsRemaining,
		snap.Price, snap.Ticker, uint64(snap.ObservedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByCandyMachine retrieves all snapshots for a candy machine, ordered by observed_at ASC.
func (s *SnapshotStore) GetByCandyMachine(ctx context.Context, candyMachine string) (result []*domain.StatusSnapshot, err error) {
	start := time.Now()
	defer func() { observe("get_snapshots", start, err) }()

	query := `
		SELECT candy_machine, network, version, items_available, items_redeemed,
		       items_remaining, price, ticker, observed_at
		FROM status_snapshots
		WHERE candy_machine = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, candyMachine)
	if err != nil {
		return nil, fmt.Errorf("query by candy machine: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, candyMachine string, from, to int64) (result []*domain.StatusSnapshot, err error) {
	start := time.Now()
	defer func() { observe("get_snapshots_range", start, err) }()

	query := `
		SELECT candy_machine, network, version, items_available, items_redeemed,
		       items_remaining, price, ticker, observed_at
		FROM status_snapshots
		WHERE candy_machine = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, candyMachine, uint64(from), uint64(to))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *SnapshotStore) exists(ctx context.Context, candyMachine string, observedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM status_snapshots
		WHERE candy_machine = ? AND observed_at = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, candyMachine, uint64(observedAt)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanSnapshots(rows chRows) ([]*domain.StatusSnapshot, error) {
	var snapshots []*domain.StatusSnapshot

	for rows.Next() {
		var snap domain.StatusSnapshot
		var version string
		var observedAt uint64

		err := rows.Scan(
			&snap.CandyMachine, &snap.Network, &version,
			&snap.ItemsAvailable, &snap.ItemsRedeemed, &snap.ItemsRemaining,
			&snap.Price, &snap.Ticker, &observedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan status snapshot row: %w", err)
		}

		snap.Version = domain.Version(version)
		snap.ObservedAt = int64(observedAt)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status snapshot rows: %w", err)
	}

	return snapshots, nil
}
