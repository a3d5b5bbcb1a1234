//go:build integration

package repository

import (
	"context"
	"testing"

	"gw2wvw/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMatchupFixtures(t *testing.T, db *Database, ctx context.Context) {
	for _, team := range []*models.Team{
		{ID: "12001", Name: "Skrittsburgh"},
		{ID: "12002", Name: "Fortune's Vale"},
		{ID: "12003", Name: "Silent Woods"},
		{ID: "12004", Name: "Ettin's Back"},
		{ID: "12005", Name: "Domain of Anguish"},
		{ID: "12006", Name: "Palawadan"},
	} {
		require.NoError(t, db.Teams.Upsert(ctx, team))
	}
}

func tierFixture(red, blue, green string, base int) models.TierMatchup {
	return models.TierMatchup{
		models.ColorRed:   {TeamID: red, Score: base},
		models.ColorBlue:  {TeamID: blue, Score: base + 1},
		models.ColorGreen: {TeamID: green, Score: base + 2},
	}
}

func TestMatchupRepository_ReplaceTier(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedMatchupFixtures(t, db, ctx)

	err := db.Matchups.ReplaceTier(ctx, 1, tierFixture("12001", "12002", "12003", 100))
	require.NoError(t, err)

	rows, err := db.Matchups.ListTier(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3, "A tier always holds exactly three rows")
	assert.Equal(t, models.ColorRed, rows[0].Color)
	assert.Equal(t, "12001", rows[0].TeamID)
	assert.Equal(t, 100, rows[0].Score)

	// Replacing again swaps the rows wholesale
	err = db.Matchups.ReplaceTier(ctx, 1, tierFixture("12004", "12005", "12006", 50))
	require.NoError(t, err)

	rows, err = db.Matchups.ListTier(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "12004", rows[0].TeamID)
	assert.Equal(t, 50, rows[0].Score)
}

func TestMatchupRepository_ReplaceTierLeavesOtherTiers(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedMatchupFixtures(t, db, ctx)

	require.NoError(t, db.Matchups.ReplaceTier(ctx, 1, tierFixture("12001", "12002", "12003", 100)))
	require.NoError(t, db.Matchups.ReplaceTier(ctx, 2, tierFixture("12004", "12005", "12006", 200)))

	require.NoError(t, db.Matchups.ReplaceTier(ctx, 1, tierFixture("12002", "12001", "12003", 300)))

	rows, err := db.Matchups.ListTier(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 200, rows[0].Score, "Replacing tier 1 must not touch tier 2")
}

func TestMatchupRepository_ReplaceTierValidation(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedMatchupFixtures(t, db, ctx)

	err := db.Matchups.ReplaceTier(ctx, 9, tierFixture("12001", "12002", "12003", 0))
	assert.Error(t, err, "Out of range tier should be rejected")

	incomplete := models.TierMatchup{
		models.ColorRed:  {TeamID: "12001", Score: 1},
		models.ColorBlue: {TeamID: "12002", Score: 2},
	}
	err = db.Matchups.ReplaceTier(ctx, 1, incomplete)
	assert.Error(t, err, "A matchup without all three colors should be rejected")

	rows, err := db.Matchups.ListTier(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows, "A rejected replace must not leave partial rows")
}

func TestMatchupRepository_Hierarchy(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedMatchupFixtures(t, db, ctx)

	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g1", Name: "Aurora", Tag: "AUR", NormalizedLetter: "A"}))
	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g2", Name: "Asgard", Tag: "ASG", NormalizedLetter: "A"}))
	require.NoError(t, db.Guilds.Insert(ctx, &models.Guild{ID: "g3", Name: "Banshee", Tag: "BAN", NormalizedLetter: "B"}))
	require.NoError(t, db.Assignments.UpsertBatch(ctx, map[string]string{
		"g1": "12001",
		"g2": "12001",
		"g3": "12002",
	}))
	require.NoError(t, db.Matchups.ReplaceTier(ctx, 1, tierFixture("12001", "12002", "12003", 100)))

	snapshot, err := db.Matchups.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	standings := snapshot[1]
	require.Len(t, standings, 3, "One standing per color")

	red := standings[0]
	assert.Equal(t, models.ColorRed, red.Color)
	assert.Equal(t, "12001", red.TeamID)
	assert.Equal(t, "Skrittsburgh", red.TeamName)
	assert.Equal(t, 100, red.Score)
	require.Len(t, red.Guilds["A"], 2)
	assert.Equal(t, "Asgard", red.Guilds["A"][0].Name, "Guilds within a letter sort by name")
	assert.Equal(t, "Aurora", red.Guilds["A"][1].Name)

	blue := standings[1]
	assert.Equal(t, models.ColorBlue, blue.Color)
	require.Len(t, blue.Guilds["B"], 1)
	assert.Equal(t, "Banshee", blue.Guilds["B"][0].Name)

	green := standings[2]
	assert.Equal(t, models.ColorGreen, green.Color)
	assert.Empty(t, green.Guilds, "A team without guilds still appears, with an empty grouping")
}

func TestMatchupRepository_HierarchyDeterministic(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedMatchupFixtures(t, db, ctx)

	require.NoError(t, db.Matchups.ReplaceTier(ctx, 1, tierFixture("12001", "12002", "12003", 100)))
	require.NoError(t, db.Matchups.ReplaceTier(ctx, 3, tierFixture("12004", "12005", "12006", 10)))

	first, err := db.Matchups.Hierarchy(ctx)
	require.NoError(t, err)
	second, err := db.Matchups.Hierarchy(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Checksum(), second.Checksum(),
		"Unchanged store state must always produce the same checksum")
}

func TestMatchupRepository_HierarchyEmpty(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	snapshot, err := db.Matchups.Hierarchy(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}
