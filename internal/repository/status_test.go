//go:build integration

package repository

import (
	"testing"

	"gw2wvw/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRepository_ClaimOnce(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// First mark with allowUpdate=false creates the row.
	err := db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusPending, false)
	require.NoError(t, err)

	status, err := db.Status.Get(ctx, models.ItemTypeGuild, "g1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusPending, status.Status)

	// A second claim must not overwrite an existing row.
	err = db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusSuccess, false)
	require.NoError(t, err)

	status, err = db.Status.Get(ctx, models.ItemTypeGuild, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status.Status, "Claim without allowUpdate never modifies")
}

func TestStatusRepository_RetryCount(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusPending, false))

	// Each failed update bumps the retry count.
	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusFailed, true))
	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusFailed, true))

	status, err := db.Status.Get(ctx, models.ItemTypeGuild, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.Equal(t, 2, status.RetryCount)

	// Success does not bump it.
	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusSuccess, true))

	status, err = db.Status.Get(ctx, models.ItemTypeGuild, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, status.Status)
	assert.Equal(t, 2, status.RetryCount)
}

func TestStatusRepository_ListRetryable(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// g1: failed once, retryable
	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g1", models.StatusFailed, true))

	// g2: failed past the limit
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g2", models.StatusFailed, true))
	}

	// g3: succeeded
	require.NoError(t, db.Status.Mark(ctx, models.ItemTypeGuild, "g3", models.StatusSuccess, true))

	// Note: the first Mark inserts with retry_count 0, so g1 sits at 0 and
	// g2 at 2 after its two conflicting updates.
	ids, err := db.Status.ListRetryable(ctx, models.ItemTypeGuild, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"g1"}, ids)

	ids, err = db.Status.ListRetryable(ctx, models.ItemTypeGuild, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"g1", "g2"}, ids)
}

func TestStatusRepository_GetMissing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	status, err := db.Status.Get(ctx, models.ItemTypeGuild, "nobody")
	require.NoError(t, err)
	assert.Nil(t, status, "Missing rows return nil, not an error")
}
