package repository

import (
	"context"
	"fmt"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// StatusRepository tracks the per-item fetch state
type StatusRepository struct {
	db *Database
}

// Mark records an attempt for an item. With allowUpdate false the row is
// only created, never modified, which gives first-seen items claim-once
// semantics. retry_count grows only when an update marks the item failed.
func (r *StatusRepository) Mark(ctx context.Context, itemType, itemID, status string, allowUpdate bool) error {
	query := `
		INSERT INTO update_status (item_type, item_id, status, last_attempt, retry_count)
		VALUES ($1, $2, $3, NOW(), 0)
		ON CONFLICT (item_type, item_id) DO NOTHING
	`
	if allowUpdate {
		query = `
			INSERT INTO update_status (item_type, item_id, status, last_attempt, retry_count)
			VALUES ($1, $2, $3, NOW(), 0)
			ON CONFLICT (item_type, item_id) DO UPDATE SET
				status = EXCLUDED.status,
				last_attempt = EXCLUDED.last_attempt,
				retry_count = CASE
					WHEN EXCLUDED.status = 'failed' THEN update_status.retry_count + 1
					ELSE update_status.retry_count
				END
		`
	}

	if _, err := r.db.Pool.Exec(ctx, query, itemType, itemID, status); err != nil {
		metrics.RecordDBQuery("mark", "update_status", "error")
		return fmt.Errorf("failed to mark status for %s %s: %w", itemType, itemID, err)
	}

	metrics.RecordDBQuery("mark", "update_status", "ok")
	return nil
}

// Get retrieves the status row for an item, or nil when none exists.
func (r *StatusRepository) Get(ctx context.Context, itemType, itemID string) (*models.UpdateStatus, error) {
	query := `
		SELECT item_type, item_id, status, last_attempt, retry_count
		FROM update_status
		WHERE item_type = $1 AND item_id = $2
	`

	rows, err := r.db.Pool.Query(ctx, query, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var status models.UpdateStatus
	err = rows.Scan(&status.ItemType, &status.ItemID, &status.Status, &status.LastAttempt, &status.RetryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to scan status: %w", err)
	}

	return &status, nil
}

// ListRetryable returns failed items of a type still under the retry limit.
func (r *StatusRepository) ListRetryable(ctx context.Context, itemType string, maxRetries int) ([]string, error) {
	query := `
		SELECT item_id
		FROM update_status
		WHERE item_type = $1 AND status = $2 AND retry_count < $3
		ORDER BY last_attempt
	`

	rows, err := r.db.Pool.Query(ctx, query, itemType, models.StatusFailed, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to list retryable items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retryable items: %w", err)
	}

	return ids, nil
}
