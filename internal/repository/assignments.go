package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// AssignmentRepository maps guilds onto teams. A guild belongs to exactly
// one team and the latest observed assignment always wins.
type AssignmentRepository struct {
	db *Database
}

// TeamAssignment is a resolved guild to team mapping.
type TeamAssignment struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

// UpsertBatch writes a guild_id to team_id map in one transaction, one
// statement per row. Rows whose guild is not in the store yet are skipped
// so foreign keys hold; the guild fan-out adds them and the next batch
// picks their assignment up. Calling it twice with the same input is a
// no-op the second time.
func (r *AssignmentRepository) UpsertBatch(ctx context.Context, assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO guild_team (guild_id, team_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM guilds WHERE id = $1)
		  AND EXISTS (SELECT 1 FROM teams WHERE id = $2)
		ON CONFLICT (guild_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			updated_at = NOW()
	`

	written := 0
	for guildID, teamID := range assignments {
		tag, err := tx.Exec(ctx, query, guildID, teamID)
		if err != nil {
			metrics.RecordDBQuery("upsert", "guild_team", "error")
			return fmt.Errorf("failed to upsert assignment %s -> %s: %w", guildID, teamID, err)
		}
		written += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}

	metrics.RecordDBQuery("upsert", "guild_team", "ok")
	log.Debug().
		Int("total", len(assignments)).
		Int("written", written).
		Msg("Assignments upserted")

	return nil
}

// GetTeamForGuild returns the team a guild currently belongs to.
func (r *AssignmentRepository) GetTeamForGuild(ctx context.Context, guildID string) (*models.Team, error) {
	query := `
		SELECT t.id, t.alt_id, t.name, t.created_at, t.updated_at
		FROM teams t
		JOIN guild_team gt ON gt.team_id = t.id
		WHERE gt.guild_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, guildID).Scan(
		&team.ID, &team.AltID, &team.Name, &team.CreatedAt, &team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assignment for guild %s: %w", guildID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team for guild: %w", err)
	}

	return &team, nil
}

// GetTeamForGuildName resolves a guild by exact name to its team.
func (r *AssignmentRepository) GetTeamForGuildName(ctx context.Context, name string) (*TeamAssignment, error) {
	query := `
		SELECT t.id, t.name
		FROM teams t
		JOIN guild_team gt ON gt.team_id = t.id
		JOIN guilds g ON g.id = gt.guild_id
		WHERE g.name = $1
	`

	var assignment TeamAssignment
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&assignment.TeamID, &assignment.TeamName)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team for guild %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team for guild name: %w", err)
	}

	return &assignment, nil
}

// GuildsForTeam returns all guilds assigned to a team, ordered for display.
func (r *AssignmentRepository) GuildsForTeam(ctx context.Context, teamID string) ([]*models.Guild, error) {
	query := `
		SELECT g.id, g.name, g.tag, g.normalized_letter, g.created_at, g.updated_at
		FROM guilds g
		JOIN guild_team gt ON gt.guild_id = g.id
		WHERE gt.team_id = $1
		ORDER BY g.normalized_letter, g.name
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds for team: %w", err)
	}
	defer rows.Close()

	var guilds []*models.Guild
	for rows.Next() {
		var guild models.Guild
		err := rows.Scan(
			&guild.ID, &guild.Name, &guild.Tag, &guild.NormalizedLetter,
			&guild.CreatedAt, &guild.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, &guild)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guilds: %w", err)
	}

	return guilds, nil
}
