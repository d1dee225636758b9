package config

import (
	"os"
	"strconv"
	"time"

	"courtflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Feed      FeedConfig
	DiaryView DiaryViewConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// FeedConfig holds change-feed listener settings. The channel name must
// match what the migration installs in the pg_notify triggers.
type FeedConfig struct {
	Channel      string
	MinReconnect time.Duration
	MaxReconnect time.Duration
}

// DiaryViewConfig holds settings for the read-only diary viewer binary.
type DiaryViewConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Feed: FeedConfig{
			Channel:      getEnvOrDefault("FEED_CHANNEL", "case_changes"),
			MinReconnect: getEnvDurationOrDefault("FEED_MIN_RECONNECT", 2*time.Second),
			MaxReconnect: getEnvDurationOrDefault("FEED_MAX_RECONNECT", time.Minute),
		},
		DiaryView: DiaryViewConfig{
			Port: getEnvOrDefault("DIARYVIEW_PORT", "8090"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Feed.Channel == "" {
		return errors.ConfigInvalid("FEED_CHANNEL must not be empty")
	}
	if config.Feed.MinReconnect > config.Feed.MaxReconnect {
		return errors.ConfigInvalid("FEED_MIN_RECONNECT must not exceed FEED_MAX_RECONNECT")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
