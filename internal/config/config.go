package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// GW2 API
	GW2BaseURL  string        `envconfig:"GW2_BASE_URL" default:"https://api.guildwars2.com"`
	GW2Region   string        `envconfig:"GW2_REGION" default:"eu"`
	GW2Timeout  time.Duration `envconfig:"GW2_TIMEOUT" default:"10s"`
	GW2MinDelay time.Duration `envconfig:"GW2_MIN_DELAY" default:"210ms"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"wvw_standings"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"wvw_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis snapshot mirror (optional)
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP read surface
	ServerPort      int           `envconfig:"SERVER_PORT" default:"8080"`
	StreamKeepAlive time.Duration `envconfig:"STREAM_KEEP_ALIVE" default:"60s"`

	// Scheduler
	EnableScheduler bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	SyncOffset      time.Duration `envconfig:"SYNC_OFFSET" default:"5s"`
	GuildRetryCron  string        `envconfig:"GUILD_RETRY_CRON" default:"0 3 * * *"`
	GuildRetryMax   int           `envconfig:"GUILD_RETRY_MAX" default:"5"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.GW2Region != "eu" && c.GW2Region != "na" {
		return fmt.Errorf("GW2_REGION must be eu or na, got %q", c.GW2Region)
	}

	if c.GW2MinDelay < 200*time.Millisecond {
		return fmt.Errorf("GW2_MIN_DELAY below the 200ms API floor: %s", c.GW2MinDelay)
	}

	if c.SyncOffset < 0 || c.SyncOffset >= time.Minute {
		return fmt.Errorf("SYNC_OFFSET must be within a minute, got %s", c.SyncOffset)
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
