package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Keys stored in the metadata table.
const (
	MetaLastSyncTime = "last_sync_time"
)

// MetadataRepository is a small key/value store for scalar state.
type MetadataRepository struct {
	db *Database
}

// Set writes a metadata value, overwriting any previous one.
func (r *MetadataRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO metadata (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}

	return nil
}

// Get reads a metadata value and when it was written.
func (r *MetadataRepository) Get(ctx context.Context, key string) (string, time.Time, error) {
	var (
		value     string
		updatedAt time.Time
	)
	err := r.db.Pool.QueryRow(ctx, `SELECT value, updated_at FROM metadata WHERE key = $1`, key).
		Scan(&value, &updatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, fmt.Errorf("metadata %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get metadata %s: %w", key, err)
	}

	return value, updatedAt, nil
}
