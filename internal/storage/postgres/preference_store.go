package postgres

import (
	"context"
	"fmt"
	"time"

	"mvcm/internal/storage"
)

// PreferenceStore implements storage.PreferenceStore using PostgreSQL.
type PreferenceStore struct {
	pool *Pool
}

// NewPreferenceStore creates a new PreferenceStore.
func NewPreferenceStore(pool *Pool) *PreferenceStore {
	return &PreferenceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PreferenceStore = (*PreferenceStore)(nil)

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (s *PreferenceStore) Get(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() { observe("get_preference", start, err) }()

	err = s.pool.QueryRow(ctx, `SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) (err error) {
	if key == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observe("set_preference", start, err) }()

	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err = s.pool.Exec(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *PreferenceStore) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { observe("delete_preference", start, err) }()

	if _, err = s.pool.Exec(ctx, `DELETE FROM preferences WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}
