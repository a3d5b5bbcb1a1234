package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		GW2Region:        "eu",
		GW2MinDelay:      210 * time.Millisecond,
		DatabasePassword: "secret",
		SyncOffset:       5 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingPassword(t *testing.T) {
	cfg := validConfig()
	cfg.DatabasePassword = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadRegion(t *testing.T) {
	cfg := validConfig()
	cfg.GW2Region = "cn"
	assert.Error(t, cfg.Validate())
}

func TestValidate_DelayBelowFloor(t *testing.T) {
	cfg := validConfig()
	cfg.GW2MinDelay = 50 * time.Millisecond
	assert.Error(t, cfg.Validate(), "Delays under the API floor must be rejected")
}

func TestValidate_OffsetOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.SyncOffset = 2 * time.Minute
	assert.Error(t, cfg.Validate())

	cfg.SyncOffset = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()

	cfg.AppEnv = "development"
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.AppEnv = "production"
	assert.True(t, cfg.IsProduction())

	cfg.RedisHost = "localhost"
	cfg.RedisPort = 6379
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
