package migrations

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mvcm/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded PostgreSQL files in lexical order.
// Every file uses IF NOT EXISTS, so reruns are harmless.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, logger *zap.Logger) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
		logger.Debug("applied migration", zap.String("database", "postgres"), zap.String("file", m.Name))
	}
	return nil
}
