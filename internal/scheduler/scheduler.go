package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gw2wvw/ingestion/internal/cache"
	"gw2wvw/ingestion/internal/config"
	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/repository"
)

// Scheduler owns the sync engine state: the store handle, the two job
// latches, and the snapshot cache. One instance is created at process
// start and shared by reference with the read surface; there is no
// package-level state.
//
// The core loop wakes at every minute boundary plus a fixed offset and
// triggers the team and matchup sync jobs. A job whose previous run is
// still holding its latch is skipped for that cycle, not queued. After all
// launched jobs finish, the snapshot cache is rebuilt from the store.
type Scheduler struct {
	cfg    *config.Config
	client Fetcher
	store  Store
	cache  *cache.SnapshotCache
	mirror *cache.RedisCache
	cron   *cron.Cron

	teamsLatch    sync.Mutex
	matchupsLatch sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance. mirror may be nil.
func NewScheduler(cfg *config.Config, client Fetcher, store Store, snapCache *cache.SnapshotCache, mirror *cache.RedisCache) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		client:   client,
		store:    store,
		cache:    snapCache,
		mirror:   mirror,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start warms the cache, schedules the nightly guild retry, and launches
// the sync loop. The loop runs until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	s.warmCache(ctx)

	if _, err := s.cron.AddFunc(s.cfg.GuildRetryCron, func() {
		log.Info().Msg("Running nightly guild retry...")
		s.retryFailedGuilds(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule guild retry: %w", err)
	}
	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.GuildRetryCron).
		Msg("Nightly guild retry scheduled")

	go s.run(ctx)
	log.Info().
		Dur("offset", s.cfg.SyncOffset).
		Msg("Sync loop started")

	return nil
}

// Stop stops the scheduler. In-flight jobs finish on their own.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	s.cron.Stop()
	s.stopOnce.Do(func() { close(s.stopChan) })
	log.Info().Msg("Scheduler stopped")
}

// run is the minute-aligned trigger loop. The deadline is recomputed from
// the wall clock on every iteration so cycles self-correct instead of
// drifting with job durations.
func (s *Scheduler) run(ctx context.Context) {
	for {
		timer := time.NewTimer(time.Until(nextWake(time.Now(), s.cfg.SyncOffset)))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Context cancelled, stopping sync loop")
			return
		case <-s.stopChan:
			timer.Stop()
			log.Info().Msg("Stop signal received, stopping sync loop")
			return
		case <-timer.C:
			s.runCycle(ctx)
		}
	}
}

// nextWake returns the next minute boundary plus offset after now.
func nextWake(now time.Time, offset time.Duration) time.Time {
	return now.Truncate(time.Minute).Add(time.Minute + offset)
}

// runCycle triggers the two sync jobs, skipping any whose latch is held,
// and rebuilds the snapshot cache once every launched job has finished.
// A cycle with both jobs latched does nothing.
func (s *Scheduler) runCycle(ctx context.Context) {
	var group errgroup.Group
	launched := 0

	if s.teamsLatch.TryLock() {
		launched++
		group.Go(func() error {
			defer s.teamsLatch.Unlock()
			return s.updateTeams(ctx)
		})
	} else {
		log.Warn().Str("job", JobTeams).Msg("Skipped job run, previous run still in flight")
		metrics.RecordSkippedRun(JobTeams)
	}

	if s.matchupsLatch.TryLock() {
		launched++
		group.Go(func() error {
			defer s.matchupsLatch.Unlock()
			return s.updateMatchup(ctx)
		})
	} else {
		log.Warn().Str("job", JobMatchups).Msg("Skipped job run, previous run still in flight")
		metrics.RecordSkippedRun(JobMatchups)
	}

	if launched == 0 {
		return
	}

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("Sync job failed this cycle")
	}

	// Rebuilt even when a job failed: the store only ever holds complete
	// writes, so the view is consistent regardless.
	s.rebuildCache(ctx)
}

// rebuildCache recomputes the aggregation view and replaces the cache. On
// a query failure the previous snapshot stays in place and readers see
// stale data until the next cycle.
func (s *Scheduler) rebuildCache(ctx context.Context) {
	snapshot, err := s.store.Hierarchy(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to rebuild snapshot, keeping previous one")
		metrics.RecordError("scheduler", "hierarchy_query")
		return
	}

	changed := s.cache.Replace(snapshot)
	s.mirror.Save(ctx, snapshot)

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.SetMetadata(ctx, repository.MetaLastSyncTime, now); err != nil {
		log.Warn().Err(err).Msg("Failed to record last sync time")
	}
	metrics.LastSuccessfulSync.SetToCurrentTime()

	log.Info().Bool("changed", changed).Msg("CACHE updated")
}

// warmCache installs a snapshot before the first cycle: from the store if
// it already has data from a previous run, otherwise from the Redis
// mirror if one is available.
func (s *Scheduler) warmCache(ctx context.Context) {
	snapshot, err := s.store.Hierarchy(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to warm cache from store")
	} else if len(snapshot) > 0 {
		s.cache.Replace(snapshot)
		log.Info().Msg("Cache warmed from store")
		return
	}

	mirrored, err := s.mirror.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to warm cache from redis mirror")
		return
	}
	if len(mirrored) > 0 {
		s.cache.Replace(mirrored)
		log.Info().Msg("Cache warmed from redis mirror")
	}
}
