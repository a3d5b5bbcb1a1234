// Command manualfetch runs one full sync pass outside the scheduler: it
// syncs team membership and all five tier matchups, then prints the
// resulting hierarchy checksum. Useful for seeding a fresh database or
// debugging the fetch layer without waiting for the minute loop.
package main

import (
	"context"
	"fmt"

	"gw2wvw/ingestion/internal/client"
	"gw2wvw/ingestion/internal/config"
	"gw2wvw/ingestion/internal/models"
	"gw2wvw/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	if err := db.Teams.Seed(ctx, models.TeamCatalog); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed team catalog")
	}

	gw2Client := client.NewClient(cfg.GW2BaseURL, cfg.GW2Region, cfg.GW2Timeout, cfg.GW2MinDelay)

	// Membership and guild details
	membership, err := gw2Client.FetchTeamMembership(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch team membership")
	}
	log.Info().Int("count", len(membership)).Msg("Membership fetched")

	if err := db.Assignments.UpsertBatch(ctx, membership); err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert assignments")
	}

	ids := make([]string, 0, len(membership))
	for guildID := range membership {
		ids = append(ids, guildID)
	}
	missing, err := db.Guilds.Missing(ctx, ids)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compute missing guilds")
	}
	log.Info().Int("count", len(missing)).Msg("Missing guilds")

	successCount := 0
	failureCount := 0
	for _, guildID := range missing {
		input, err := gw2Client.FetchGuild(ctx, guildID)
		if err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Msg("Failed to fetch guild. Skipping.")
			failureCount++
			continue
		}
		if err := db.Guilds.Insert(ctx, input.ToGuild()); err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Msg("Failed to save guild. Skipping.")
			failureCount++
			continue
		}
		successCount++
	}
	log.Info().Int("successful", successCount).Int("failed", failureCount).Msg("Guild fan-out complete")

	if len(missing) > 0 {
		if err := db.Assignments.UpsertBatch(ctx, membership); err != nil {
			log.Fatal().Err(err).Msg("Failed to relink assignments")
		}
	}

	// Matchups
	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		matchup, err := gw2Client.FetchMatchup(ctx, tier)
		if err != nil {
			log.Error().Err(err).Int("tier", tier).Msg("Failed to fetch tier. Skipping.")
			continue
		}
		if err := db.Matchups.ReplaceTier(ctx, tier, matchup); err != nil {
			log.Error().Err(err).Int("tier", tier).Msg("Failed to replace tier. Skipping.")
		}
	}

	snapshot, err := db.Matchups.Hierarchy(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build hierarchy")
	}

	log.Info().
		Int("tiers", len(snapshot)).
		Str("checksum", snapshot.Checksum()).
		Msg("Manual sync complete")
}
