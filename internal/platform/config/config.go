// Package config centralizes the environment variables consumed by the api
// binary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates every parameter the api binary needs.
type Config struct {
	HTTPAddress string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled       bool
	RateLimitMaxCasts      int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool

	// VotingTimezone governs window arithmetic and daily result buckets.
	VotingTimezone string

	// ListenerTimeout bounds each bus listener; zero keeps dispatch unbounded.
	ListenerTimeout time.Duration

	LeaderboardSize int
}

func Load() (Config, error) {
	// Defaults favor local runs; env vars override for Docker/K8s.
	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "awards"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "awards"),
		PostgresDB:             getEnv("POSTGRES_DB", "awards_votes"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RateLimitEnabled:       getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitMaxCasts:      getEnvAsInt("RATE_LIMIT_MAX", 30),
		RateLimitWindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		VotingTimezone:         getEnv("VOTING_TIMEZONE", "Local"),
		LeaderboardSize:        getEnvAsInt("LEADERBOARD_SIZE", 10),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = dbInt

	timeoutMs := getEnvAsInt("BUS_LISTENER_TIMEOUT_MS", 0)
	if timeoutMs < 0 {
		return Config{}, fmt.Errorf("config: BUS_LISTENER_TIMEOUT_MS must not be negative")
	}
	cfg.ListenerTimeout = time.Duration(timeoutMs) * time.Millisecond

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	// DSN format stays compatible with GORM and migration tooling.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

// Location resolves VotingTimezone ("Local", "UTC" or an IANA name).
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.VotingTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid VOTING_TIMEZONE %q: %w", c.VotingTimezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
