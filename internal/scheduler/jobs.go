package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// Job names, used in logs and metrics.
const (
	JobTeams    = "teams"
	JobMatchups = "matchups"
)

// updateTeams syncs guild to team assignments and fetches details for
// guilds seen for the first time. Runs under the teams latch.
//
// The membership map is batch-critical: if it cannot be fetched the run
// aborts and the next cycle retries. Individual guild detail fetches are
// not: each one fails or succeeds on its own, and a failed guild is simply
// re-derived as missing on a later cycle.
func (s *Scheduler) updateTeams(ctx context.Context) error {
	start := time.Now()

	membership, err := s.client.FetchTeamMembership(ctx)
	if err != nil {
		metrics.RecordSync(JobTeams, "error", time.Since(start).Seconds())
		return fmt.Errorf("team membership fetch failed: %w", err)
	}

	if err := s.store.UpsertAssignments(ctx, membership); err != nil {
		metrics.RecordSync(JobTeams, "error", time.Since(start).Seconds())
		return fmt.Errorf("assignment upsert failed: %w", err)
	}

	ids := make([]string, 0, len(membership))
	for guildID := range membership {
		ids = append(ids, guildID)
	}

	missing, err := s.store.MissingGuilds(ctx, ids)
	if err != nil {
		metrics.RecordSync(JobTeams, "error", time.Since(start).Seconds())
		return fmt.Errorf("missing guild query failed: %w", err)
	}
	log.Info().Int("count", len(missing)).Msg("Found new guilds")

	var wg sync.WaitGroup
	for _, guildID := range missing {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.fetchAndAddGuild(ctx, id)
		}(guildID)
	}
	wg.Wait()

	// Second pass links guilds that were just inserted; their assignment
	// rows were skipped in the first batch because of the FK on guilds.
	if len(missing) > 0 {
		if err := s.store.UpsertAssignments(ctx, membership); err != nil {
			metrics.RecordSync(JobTeams, "error", time.Since(start).Seconds())
			return fmt.Errorf("assignment relink failed: %w", err)
		}
	}

	if count, err := s.store.GuildCount(ctx); err == nil {
		metrics.GuildsIngested.Set(float64(count))
	}

	metrics.RecordSync(JobTeams, "success", time.Since(start).Seconds())
	log.Info().
		Int("assignments", len(membership)).
		Int("new_guilds", len(missing)).
		Dur("duration", time.Since(start)).
		Msg("Team sync complete")

	return nil
}

// fetchAndAddGuild fetches one guild's detail and stores it. The guild is
// claimed pending on first sight; success and failure update the status
// row and bump the retry count on failure.
func (s *Scheduler) fetchAndAddGuild(ctx context.Context, guildID string) {
	if err := s.store.MarkStatus(ctx, models.ItemTypeGuild, guildID, models.StatusPending, false); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("Failed to claim guild")
	}

	input, err := s.client.FetchGuild(ctx, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("Guild can't be fetched")
		metrics.RecordError("teams_sync", "guild_fetch")
		if err := s.store.MarkStatus(ctx, models.ItemTypeGuild, guildID, models.StatusFailed, true); err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Msg("Failed to mark guild failed")
		}
		return
	}

	guild := input.ToGuild()
	if err := s.store.InsertGuild(ctx, guild); err != nil {
		log.Error().Err(err).Str("guild_id", guildID).Msg("Failed to save guild")
		metrics.RecordError("teams_sync", "guild_insert")
		return
	}

	if err := s.store.MarkStatus(ctx, models.ItemTypeGuild, guildID, models.StatusSuccess, true); err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("Failed to mark guild success")
	}

	log.Debug().
		Str("guild_id", guildID).
		Str("name", guild.Name).
		Str("tag", guild.Tag).
		Msg("Guild added")
}

// updateMatchup refreshes tiers 1..5 sequentially. Runs under the
// matchups latch. Each tier is an independent unit of work: a failed tier
// keeps its previous rows and the remaining tiers still refresh.
func (s *Scheduler) updateMatchup(ctx context.Context) error {
	start := time.Now()
	failed := 0

	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		matchup, err := s.client.FetchMatchup(ctx, tier)
		if err != nil {
			log.Warn().Err(err).Int("tier", tier).Msg("Match update for tier failed")
			metrics.RecordError("matchup_sync", "tier_fetch")
			failed++
			continue
		}

		if err := s.store.ReplaceTier(ctx, tier, matchup); err != nil {
			log.Error().Err(err).Int("tier", tier).Msg("Failed to replace tier")
			metrics.RecordError("matchup_sync", "tier_replace")
			failed++
			continue
		}
	}

	status := "success"
	if failed > 0 {
		status = "partial"
	}
	metrics.RecordSync(JobMatchups, status, time.Since(start).Seconds())
	log.Info().
		Int("failed_tiers", failed).
		Dur("duration", time.Since(start)).
		Msg("Matchup sync complete")

	return nil
}

// retryFailedGuilds re-fetches guilds whose detail fetch failed, bounded
// by the configured retry limit. Assignment rows for them are picked up by
// the next team sync cycle.
func (s *Scheduler) retryFailedGuilds(ctx context.Context) {
	ids, err := s.store.RetryableGuilds(ctx, s.cfg.GuildRetryMax)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list retryable guilds")
		return
	}
	if len(ids) == 0 {
		return
	}

	log.Info().Int("count", len(ids)).Msg("Retrying failed guilds")
	for _, guildID := range ids {
		s.fetchAndAddGuild(ctx, guildID)
	}
}
