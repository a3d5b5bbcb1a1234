package models

import "time"

// Update statuses for tracked items.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Item types tracked in update_status.
const (
	ItemTypeGuild = "guild"
	ItemTypeTeam  = "team"
)

// UpdateStatus tracks the fetch state of a single item so resolved guilds
// are not fetched again and failed ones can be retried with a bounded count.
type UpdateStatus struct {
	ItemType    string    `db:"item_type"`
	ItemID      string    `db:"item_id"`
	Status      string    `db:"status"`
	LastAttempt time.Time `db:"last_attempt"`
	RetryCount  int       `db:"retry_count"`
}
