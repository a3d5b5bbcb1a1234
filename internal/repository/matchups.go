package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// MatchupRepository handles per-tier standings rows
type MatchupRepository struct {
	db *Database
}

// ReplaceTier replaces all three rows of a tier in one transaction. A tier
// is never patched field by field, so its rows stay mutually consistent.
// Other tiers are untouched.
func (r *MatchupRepository) ReplaceTier(ctx context.Context, tier int, matchup models.TierMatchup) error {
	if err := models.ValidateTier(tier); err != nil {
		return err
	}
	for _, color := range models.Colors {
		if _, ok := matchup[color]; !ok {
			return fmt.Errorf("matchup for tier %d is missing color %s", tier, color)
		}
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM matchups WHERE tier = $1`, tier); err != nil {
		metrics.RecordDBQuery("replace", "matchups", "error")
		return fmt.Errorf("failed to clear tier %d: %w", tier, err)
	}

	insert := `
		INSERT INTO matchups (tier, color, team_id, score)
		VALUES ($1, $2, $3, $4)
	`
	for _, color := range models.Colors {
		entry := matchup[color]
		if _, err := tx.Exec(ctx, insert, tier, color, entry.TeamID, entry.Score); err != nil {
			metrics.RecordDBQuery("replace", "matchups", "error")
			return fmt.Errorf("failed to insert tier %d %s: %w", tier, color, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tier %d replace: %w", tier, err)
	}

	metrics.RecordDBQuery("replace", "matchups", "ok")
	log.Debug().Int("tier", tier).Msg("Tier replaced")

	return nil
}

// ListTier returns the stored rows of one tier ordered by color.
func (r *MatchupRepository) ListTier(ctx context.Context, tier int) ([]*models.MatchupRow, error) {
	query := `
		SELECT tier, color, team_id, score, updated_at
		FROM matchups
		WHERE tier = $1
		ORDER BY CASE color WHEN 'red' THEN 0 WHEN 'blue' THEN 1 ELSE 2 END
	`

	rows, err := r.db.Pool.Query(ctx, query, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier %d: %w", tier, err)
	}
	defer rows.Close()

	var result []*models.MatchupRow
	for rows.Next() {
		var row models.MatchupRow
		if err := rows.Scan(&row.Tier, &row.Color, &row.TeamID, &row.Score, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan matchup row: %w", err)
		}
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchup rows: %w", err)
	}

	return result, nil
}

// Hierarchy runs the aggregation view: matchups joined through teams and
// assignments down to guilds, reshaped into the nested snapshot. The query
// orders by (tier, color, guild letter, guild name) so unchanged store
// state always yields an identical snapshot, which downstream change
// detection relies on. Teams without resolved guilds still appear with an
// empty grouping.
func (r *MatchupRepository) Hierarchy(ctx context.Context) (models.Snapshot, error) {
	query := `
		SELECT m.tier, m.color, m.team_id, t.name, m.score,
		       g.id, g.name, g.tag, g.normalized_letter
		FROM matchups m
		JOIN teams t ON t.id = m.team_id
		LEFT JOIN guild_team gt ON gt.team_id = t.id
		LEFT JOIN guilds g ON g.id = gt.guild_id
		ORDER BY m.tier,
		         CASE m.color WHEN 'red' THEN 0 WHEN 'blue' THEN 1 ELSE 2 END,
		         g.normalized_letter, g.name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hierarchy: %w", err)
	}
	defer rows.Close()

	snapshot := make(models.Snapshot)
	for rows.Next() {
		var (
			tier     int
			color    models.Color
			teamID   string
			teamName string
			score    int
			guildID  *string
			name     *string
			tag      *string
			letter   *string
		)
		if err := rows.Scan(&tier, &color, &teamID, &teamName, &score, &guildID, &name, &tag, &letter); err != nil {
			return nil, fmt.Errorf("failed to scan hierarchy row: %w", err)
		}

		standings := snapshot[tier]
		if len(standings) == 0 || standings[len(standings)-1].Color != color {
			standings = append(standings, models.TeamStanding{
				TeamID:   teamID,
				TeamName: teamName,
				Color:    color,
				Score:    score,
				Guilds:   make(map[string][]models.GuildRef),
			})
		}
		if guildID != nil {
			current := &standings[len(standings)-1]
			current.Guilds[*letter] = append(current.Guilds[*letter], models.GuildRef{
				ID:   *guildID,
				Name: *name,
				Tag:  *tag,
			})
		}
		snapshot[tier] = standings
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hierarchy: %w", err)
	}

	return snapshot, nil
}
