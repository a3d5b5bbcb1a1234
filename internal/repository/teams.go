package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// TeamRepository handles team database operations. Teams are reference
// data: they are seeded from the built-in catalog and never written by the
// sync jobs.
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, alt_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			alt_id = EXCLUDED.alt_id,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, team.ID, team.AltID, team.Name).
		Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		metrics.RecordDBQuery("upsert", "teams", "error")
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	metrics.RecordDBQuery("upsert", "teams", "ok")
	return nil
}

// Seed loads the built-in team catalog. Idempotent, called once at startup.
func (r *TeamRepository) Seed(ctx context.Context, catalog []models.TeamSeed) error {
	for _, seed := range catalog {
		team := &models.Team{ID: seed.ID, Name: seed.Name}
		if seed.AltID != "" {
			team.AltID = sql.NullString{String: seed.AltID, Valid: true}
		}
		if err := r.Upsert(ctx, team); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", seed.ID, err)
		}
	}

	log.Info().Int("count", len(catalog)).Msg("Team catalog seeded")
	return nil
}

// GetByID retrieves a team by its canonical or alternate ID.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, alt_id, name, created_at, updated_at
		FROM teams
		WHERE id = $1 OR alt_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.AltID, &team.Name, &team.CreatedAt, &team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams ordered by name
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, alt_id, name, created_at, updated_at
		FROM teams
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.AltID, &team.Name, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
