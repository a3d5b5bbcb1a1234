//go:build integration

package repository

import (
	"context"
	"testing"

	"gw2wvw/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAssignmentFixtures(t *testing.T, db *Database, ctx context.Context) {
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{ID: "12001", Name: "Skrittsburgh"}))
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{ID: "12002", Name: "Fortune's Vale"}))
	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g1", Name: "Aurora", Tag: "AUR", NormalizedLetter: "A"}))
	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g2", Name: "Banshee", Tag: "BAN", NormalizedLetter: "B"}))
}

func TestAssignmentRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedAssignmentFixtures(t, db, ctx)

	err := db.Assignments.UpsertBatch(ctx, map[string]string{
		"g1": "12001",
		"g2": "12002",
	})
	require.NoError(t, err)

	team, err := db.Assignments.GetTeamForGuild(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "12001", team.ID)

	// Latest observed assignment wins
	err = db.Assignments.UpsertBatch(ctx, map[string]string{"g1": "12002"})
	require.NoError(t, err)

	team, err = db.Assignments.GetTeamForGuild(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "12002", team.ID, "A moved guild should follow its new team")
}

func TestAssignmentRepository_UpsertBatchSkipsUnknownGuilds(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedAssignmentFixtures(t, db, ctx)

	// "ghost" has no guild row yet; its assignment is skipped, not an error.
	err := db.Assignments.UpsertBatch(ctx, map[string]string{
		"g1":    "12001",
		"ghost": "12002",
	})
	require.NoError(t, err)

	_, err = db.Assignments.GetTeamForGuild(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	// Once the guild exists, replaying the same batch links it.
	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "ghost", Name: "Ghost", NormalizedLetter: "G"}))
	err = db.Assignments.UpsertBatch(ctx, map[string]string{
		"g1":    "12001",
		"ghost": "12002",
	})
	require.NoError(t, err)

	team, err := db.Assignments.GetTeamForGuild(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "12002", team.ID)
}

func TestAssignmentRepository_GetTeamForGuildName(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedAssignmentFixtures(t, db, ctx)

	require.NoError(t, db.Assignments.UpsertBatch(ctx, map[string]string{"g1": "12001"}))

	assignment, err := db.Assignments.GetTeamForGuildName(ctx, "Aurora")
	require.NoError(t, err)
	assert.Equal(t, "12001", assignment.TeamID)
	assert.Equal(t, "Skrittsburgh", assignment.TeamName)

	_, err = db.Assignments.GetTeamForGuildName(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignmentRepository_GuildsForTeam(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedAssignmentFixtures(t, db, ctx)

	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g3", Name: "!!!", Tag: "BNG", NormalizedLetter: "#"}))
	require.NoError(t, db.Assignments.UpsertBatch(ctx, map[string]string{
		"g1": "12001",
		"g2": "12001",
		"g3": "12001",
	}))

	guilds, err := db.Assignments.GuildsForTeam(ctx, "12001")
	require.NoError(t, err)
	require.Len(t, guilds, 3)

	// Ordered by normalized letter then name; the sentinel sorts first.
	assert.Equal(t, "g3", guilds[0].ID)
	assert.Equal(t, "g1", guilds[1].ID)
	assert.Equal(t, "g2", guilds[2].ID)
}
