// Package config provides centralized configuration management for the
// eduShare server. It loads configuration from CLI flags and environment
// variables, validates required fields, and provides sensible defaults.
//
// CLI flags control which services are mocked (--no-s3). Environment
// variables provide secrets and service configuration.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kuitang/edushare/internal/ratelimit"
)

const (
	defaultRegion = "auto"

	// DatabaseKeyHexLen is the required length of DATABASE_KEY when set
	// (32 bytes hex encoded).
	DatabaseKeyHexLen = 64
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr string

	// Database and encryption
	DatabasePath string // Path to the notes SQLite file
	DatabaseKey  string // Optional SQLCipher key, 64 hex characters

	// Snapshot export
	SnapshotPath string // Local snapshot file (used when S3 is disabled)
	SnapshotKey  string // Object key for the S3 snapshot

	// Rate limiting
	RateLimitConfig ratelimit.Config

	// Mock service flags (controlled by CLI flags, not env vars)
	NoS3 bool // If true, snapshot export targets the local file (--no-s3)

	// S3 Storage (uses AWS_ env vars)
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
	AWSBucketName      string // BUCKET_NAME
}

// ValidationError represents a configuration validation error with
// multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() (noS3 bool, addr string) {
	flag.BoolVar(&noS3, "no-s3", false, "Export snapshots to a local file instead of S3")
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()
	return noS3, addr
}

// LoadConfig loads configuration from environment variables and CLI flag
// values. The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(noS3 bool, addr string) (*Config, error) {
	cfg := &Config{}

	cfg.NoS3 = noS3

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if addr != "" {
		cfg.ListenAddr = addr
	}

	// Database and encryption
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/notes.db")
	cfg.DatabaseKey = strings.TrimSpace(os.Getenv("DATABASE_KEY"))

	// Snapshot export
	cfg.SnapshotPath = getEnvOrDefault("SNAPSHOT_PATH", "./data/notes-app-data.json")
	cfg.SnapshotKey = getEnvOrDefault("SNAPSHOT_KEY", "notes-app-data")

	// Rate limiting
	cfg.RateLimitConfig = ratelimit.Config{
		RPS:             parseFloat64OrDefault("RATE_LIMIT_RPS", ratelimit.DefaultConfig.RPS),
		Burst:           parseIntOrDefault("RATE_LIMIT_BURST", ratelimit.DefaultConfig.Burst),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", ratelimit.DefaultConfig.CleanupInterval),
	}

	// S3 Storage
	cfg.AWSEndpointS3 = strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL_S3"))
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultRegion)
	cfg.AWSAccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.AWSSecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	cfg.AWSBucketName = strings.TrimSpace(os.Getenv("BUCKET_NAME"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseKey != "" {
		if len(c.DatabaseKey) != DatabaseKeyHexLen {
			errs = append(errs, "DATABASE_KEY must be 64 hex characters (generate with: openssl rand -hex 32)")
		} else if _, err := hex.DecodeString(c.DatabaseKey); err != nil {
			errs = append(errs, "DATABASE_KEY must be valid hex")
		}
	}

	// S3: require AWS credentials unless --no-s3
	if !c.NoS3 {
		if c.AWSEndpointS3 == "" {
			errs = append(errs, "AWS_ENDPOINT_URL_S3 is required (set env var or use --no-s3)")
		}
		if c.AWSBucketName == "" {
			errs = append(errs, "BUCKET_NAME is required (set env var or use --no-s3)")
		}
		if c.AWSAccessKeyID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required (set env var or use --no-s3)")
		}
		if c.AWSSecretAccessKey == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required (set env var or use --no-s3)")
		}
	}

	if c.RateLimitConfig.RPS <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitConfig.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// PrintStartupSummary prints a human-readable summary of the
// configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "edushare server starting...")

	if c.DatabaseKey != "" {
		fmt.Fprintf(os.Stderr, "  Database: %s (encrypted)\n", c.DatabasePath)
	} else {
		fmt.Fprintf(os.Stderr, "  Database: %s\n", c.DatabasePath)
	}

	if c.NoS3 {
		fmt.Fprintf(os.Stderr, "  Snapshot: local file %s (--no-s3)\n", c.SnapshotPath)
	} else {
		fmt.Fprintf(os.Stderr, "  Snapshot: s3://%s/%s (endpoint: %s)\n", c.AWSBucketName, c.SnapshotKey, c.AWSEndpointS3)
	}

	fmt.Fprintf(os.Stderr, "  Listen:   %s\n", c.ListenAddr)
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails. Use
// this in main() when the application should fail fast on bad config.
func MustLoadConfig(noS3 bool, addr string) *Config {
	cfg, err := LoadConfig(noS3, addr)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
