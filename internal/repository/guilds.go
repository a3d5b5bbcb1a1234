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

// GuildRepository handles guild database operations
type GuildRepository struct {
	db *Database
}

// Insert adds a guild if it is not known yet. A later membership sync never
// renames an existing guild, so conflicts are left untouched.
func (r *GuildRepository) Insert(ctx context.Context, guild *models.Guild) error {
	query := `
		INSERT INTO guilds (id, name, tag, normalized_letter)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query, guild.ID, guild.Name, guild.Tag, guild.NormalizedLetter)
	if err != nil {
		metrics.RecordDBQuery("insert", "guilds", "error")
		return fmt.Errorf("failed to insert guild: %w", err)
	}

	metrics.RecordDBQuery("insert", "guilds", "ok")
	log.Debug().
		Str("guild_id", guild.ID).
		Str("name", guild.Name).
		Str("tag", guild.Tag).
		Msg("Guild saved")

	return nil
}

// Missing returns the subset of ids not yet present in the guilds table.
func (r *GuildRepository) Missing(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT candidate.id
		FROM unnest($1::text[]) AS candidate(id)
		LEFT JOIN guilds g ON g.id = candidate.id
		WHERE g.id IS NULL
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing guilds: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		missing = append(missing, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing guilds: %w", err)
	}

	return missing, nil
}

// GetByID retrieves a guild by ID
func (r *GuildRepository) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	query := `
		SELECT id, name, tag, normalized_letter, created_at, updated_at
		FROM guilds
		WHERE id = $1
	`

	var guild models.Guild
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&guild.ID, &guild.Name, &guild.Tag, &guild.NormalizedLetter,
		&guild.CreatedAt, &guild.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guild %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	return &guild, nil
}

// GetByName retrieves a guild by its exact name
func (r *GuildRepository) GetByName(ctx context.Context, name string) (*models.Guild, error) {
	query := `
		SELECT id, name, tag, normalized_letter, created_at, updated_at
		FROM guilds
		WHERE name = $1
	`

	var guild models.Guild
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&guild.ID, &guild.Name, &guild.Tag, &guild.NormalizedLetter,
		&guild.CreatedAt, &guild.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guild %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild by name: %w", err)
	}

	return &guild, nil
}

// Count returns the total number of guilds
func (r *GuildRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM guilds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count guilds: %w", err)
	}
	return count, nil
}
