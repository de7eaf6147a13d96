package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mvcm/internal/config"
	"mvcm/internal/storage"
	chstore "mvcm/internal/storage/clickhouse"
	"mvcm/internal/storage/file"
	"mvcm/internal/storage/memory"
	"mvcm/internal/storage/migrations"
	pgstore "mvcm/internal/storage/postgres"
)

// Stores holds the storage implementations selected by configuration.
type Stores struct {
	Prefs       storage.PreferenceStore
	MintRecords storage.MintRecordStore
	Snapshots   storage.SnapshotStore

	// Backend names the selected storage for logging: memory, file or database.
	Backend string

	cleanup func()
}

// Close releases database connections.
func (s *Stores) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// OpenStores creates the stores for cfg.
//   - use_memory: everything in memory.
//   - postgres_dsn and clickhouse_dsn: preferences and mint records in
//     PostgreSQL, snapshots in ClickHouse. Migrations run first.
//   - otherwise: preferences in the YAML file, history in memory.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case cfg.UseMemory:
		return &Stores{
			Prefs:       memory.NewPreferenceStore(),
			MintRecords: memory.NewMintRecordStore(),
			Snapshots:   memory.NewSnapshotStore(),
			Backend:     "memory",
		}, nil

	case cfg.Persistent():
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}

		chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}

		return &Stores{
			Prefs:       pgstore.NewPreferenceStore(pool),
			MintRecords: pgstore.NewMintRecordStore(pool),
			Snapshots:   chstore.NewSnapshotStore(chConn),
			Backend:     "database",
			cleanup: func() {
				chConn.Close()
				pool.Close()
			},
		}, nil

	default:
		prefs, err := file.Open(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Prefs:       prefs,
			MintRecords: memory.NewMintRecordStore(),
			Snapshots:   memory.NewSnapshotStore(),
			Backend:     "file",
		}, nil
	}
}
