// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret signs tokens outside production when JWT_SECRET is unset.
const devJWTSecret = "outfitly-dev-secret"

// Item image failure policies accepted in ITEM_IMAGE_FAILURE.
const (
	ItemImageFailureSwallow = "swallow"
	ItemImageFailureFatal   = "fatal"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// S3-compatible blob store
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Bearer token verification
	JWTSecret string

	// WriteRateLimit is the number of mutating API requests a client may
	// make per minute. Zero disables the limit.
	WriteRateLimit int

	// Image ingestion
	IngestMaxWidth     int
	IngestQuality      int
	IngestFetchTimeout time.Duration

	// ItemImageFailure selects whether per-item image upload failures are
	// swallowed or escalated to aggregate failures.
	ItemImageFailure string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file (or the file named by
// APP_ENV_FILE) is loaded first if present; real environment variables
// always win over it. Returns an error if critical values are missing in
// production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(envOrDefault("APP_ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "outfitly"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "outfitly"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "outfitly-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ItemImageFailure: envOrDefault("ITEM_IMAGE_FAILURE", ItemImageFailureSwallow),
	}

	var err error
	if cfg.IngestMaxWidth, err = envIntOrDefault("INGEST_MAX_WIDTH", 1200); err != nil {
		return nil, err
	}
	if cfg.IngestQuality, err = envIntOrDefault("INGEST_QUALITY", 90); err != nil {
		return nil, err
	}
	if cfg.IngestFetchTimeout, err = envDurationOrDefault("INGEST_FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDurationOrDefault("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit, err = envIntOrDefault("WRITE_RATE_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit < 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must not be negative, got %d", cfg.WriteRateLimit)
	}

	if cfg.IngestQuality < 1 || cfg.IngestQuality > 100 {
		return nil, fmt.Errorf("INGEST_QUALITY must be between 1 and 100, got %d", cfg.IngestQuality)
	}
	if cfg.IngestMaxWidth < 1 {
		return nil, fmt.Errorf("INGEST_MAX_WIDTH must be positive, got %d", cfg.IngestMaxWidth)
	}
	switch cfg.ItemImageFailure {
	case ItemImageFailureSwallow, ItemImageFailureFatal:
	default:
		return nil, fmt.Errorf("ITEM_IMAGE_FAILURE must be %q or %q, got %q",
			ItemImageFailureSwallow, ItemImageFailureFatal, cfg.ItemImageFailure)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	} else if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasStorage reports whether blob storage credentials are configured.
func (c *Config) HasStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDurationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
