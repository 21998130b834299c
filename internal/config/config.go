package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Game        GameConfig        `mapstructure:"game" validate:"required"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects in-memory storage.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// GameConfig holds the rules applied to new games. SessionTTL is how long
// an unused session is kept; zero keeps sessions until they are ended.
type GameConfig struct {
	PairCount       int           `mapstructure:"pair_count" validate:"gte=1,lte=10"`
	RevertDelay     time.Duration `mapstructure:"revert_delay" validate:"gt=0"`
	CompletionDelay time.Duration `mapstructure:"completion_delay" validate:"gte=0"`
	SessionTTL      time.Duration `mapstructure:"session_ttl" validate:"gte=0"`
}

// LeaderboardConfig controls where high scores are kept and how many.
type LeaderboardConfig struct {
	Key   string `mapstructure:"key" validate:"required"`
	Limit int    `mapstructure:"limit" validate:"gte=1,lte=1000"`
}

// UsesDatabase reports whether a PostgreSQL backend is configured.
func (c *Config) UsesDatabase() bool {
	return c.Database.URL != ""
}
