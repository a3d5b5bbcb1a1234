package scheduler

import (
	"context"

	"gw2wvw/ingestion/internal/models"
	"gw2wvw/ingestion/internal/repository"
)

// Fetcher is the slice of the GW2 client the sync jobs use.
type Fetcher interface {
	FetchTeamMembership(ctx context.Context) (map[string]string, error)
	FetchGuild(ctx context.Context, guildID string) (*models.GuildInput, error)
	FetchMatchup(ctx context.Context, tier int) (models.TierMatchup, error)
}

// Store is the slice of the reconciliation store the sync jobs use.
type Store interface {
	UpsertAssignments(ctx context.Context, assignments map[string]string) error
	MissingGuilds(ctx context.Context, ids []string) ([]string, error)
	InsertGuild(ctx context.Context, guild *models.Guild) error
	ReplaceTier(ctx context.Context, tier int, matchup models.TierMatchup) error
	MarkStatus(ctx context.Context, itemType, itemID, status string, allowUpdate bool) error
	Hierarchy(ctx context.Context) (models.Snapshot, error)
	SetMetadata(ctx context.Context, key, value string) error
	RetryableGuilds(ctx context.Context, maxRetries int) ([]string, error)
	GuildCount(ctx context.Context) (int, error)
}

// dbStore adapts the repository layout onto the Store interface.
type dbStore struct {
	db *repository.Database
}

// NewStore wraps a database for use by the scheduler.
func NewStore(db *repository.Database) Store {
	return &dbStore{db: db}
}

func (s *dbStore) UpsertAssignments(ctx context.Context, assignments map[string]string) error {
	return s.db.Assignments.UpsertBatch(ctx, assignments)
}

func (s *dbStore) MissingGuilds(ctx context.Context, ids []string) ([]string, error) {
	return s.db.Guilds.Missing(ctx, ids)
}

func (s *dbStore) InsertGuild(ctx context.Context, guild *models.Guild) error {
	return s.db.Guilds.Insert(ctx, guild)
}

func (s *dbStore) ReplaceTier(ctx context.Context, tier int, matchup models.TierMatchup) error {
	return s.db.Matchups.ReplaceTier(ctx, tier, matchup)
}

func (s *dbStore) MarkStatus(ctx context.Context, itemType, itemID, status string, allowUpdate bool) error {
	return s.db.Status.Mark(ctx, itemType, itemID, status, allowUpdate)
}

func (s *dbStore) Hierarchy(ctx context.Context) (models.Snapshot, error) {
	return s.db.Matchups.Hierarchy(ctx)
}

func (s *dbStore) SetMetadata(ctx context.Context, key, value string) error {
	return s.db.Metadata.Set(ctx, key, value)
}

func (s *dbStore) RetryableGuilds(ctx context.Context, maxRetries int) ([]string, error) {
	return s.db.Status.ListRetryable(ctx, models.ItemTypeGuild, maxRetries)
}

func (s *dbStore) GuildCount(ctx context.Context) (int, error) {
	return s.db.Guilds.Count(ctx)
}
