package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gw2wvw/ingestion/internal/models"
)

const snapshotKey = "wvw:snapshot"

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache mirrors the latest snapshot into Redis so a restarted worker
// can serve standings before its first sync cycle completes. The worker
// runs fine without it; a nil *RedisCache is safe to call.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Save mirrors a snapshot. Errors are logged, not propagated: the mirror
// is best effort and must never fail a sync cycle.
func (r *RedisCache) Save(ctx context.Context, snapshot models.Snapshot) {
	if r == nil {
		return
	}

	blob, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot for redis")
		return
	}

	if err := r.client.Set(ctx, snapshotKey, blob, 0).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to mirror snapshot to redis")
	}
}

// Load returns the mirrored snapshot, or nil when none is stored.
func (r *RedisCache) Load(ctx context.Context) (models.Snapshot, error) {
	if r == nil {
		return nil, nil
	}

	blob, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mirrored snapshot: %w", err)
	}

	return snapshot, nil
}

// Close closes the Redis connection.
func (r *RedisCache) Close() {
	if r == nil {
		return
	}
	if err := r.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close redis client")
	}
}
