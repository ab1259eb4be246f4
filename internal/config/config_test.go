package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "DATABASE_PATH", "DATABASE_KEY",
		"SNAPSHOT_PATH", "SNAPSHOT_KEY",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP_INTERVAL",
		"AWS_ENDPOINT_URL_S3", "AWS_REGION", "AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY", "BUCKET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_DefaultsWithNoS3(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(true, "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "./data/notes.db", cfg.DatabasePath)
	assert.Empty(t, cfg.DatabaseKey)
	assert.Equal(t, "./data/notes-app-data.json", cfg.SnapshotPath)
	assert.Equal(t, "notes-app-data", cfg.SnapshotKey)
	assert.Equal(t, 20.0, cfg.RateLimitConfig.RPS)
	assert.Equal(t, 40, cfg.RateLimitConfig.Burst)
	assert.Equal(t, time.Hour, cfg.RateLimitConfig.CleanupInterval)
	assert.True(t, cfg.NoS3)
}

func TestLoadConfig_AddrFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9000")

	cfg, err := LoadConfig(true, ":7777")
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.ListenAddr)

	cfg, err = LoadConfig(true, "")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestLoadConfig_S3RequiresCredentials(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(false, "")
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)

	joined := strings.Join(validationErr.Errors, "\n")
	assert.Contains(t, joined, "AWS_ENDPOINT_URL_S3")
	assert.Contains(t, joined, "BUCKET_NAME")
	assert.Contains(t, joined, "AWS_ACCESS_KEY_ID")
	assert.Contains(t, joined, "AWS_SECRET_ACCESS_KEY")
}

func TestLoadConfig_S3WithCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_ENDPOINT_URL_S3", "https://s3.example.test")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("BUCKET_NAME", "notes")

	cfg, err := LoadConfig(false, "")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.test", cfg.AWSEndpointS3)
	assert.Equal(t, "auto", cfg.AWSRegion)
	assert.Equal(t, "notes", cfg.AWSBucketName)
}

func TestLoadConfig_DatabaseKeyValidation(t *testing.T) {
	clearEnv(t)

	t.Setenv("DATABASE_KEY", "tooshort")
	_, err := LoadConfig(true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_KEY must be 64 hex characters")

	t.Setenv("DATABASE_KEY", strings.Repeat("z", 64))
	_, err = LoadConfig(true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid hex")

	t.Setenv("DATABASE_KEY", strings.Repeat("ab", 32))
	cfg, err := LoadConfig(true, "")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ab", 32), cfg.DatabaseKey)
}

func TestLoadConfig_RateLimitOverridesAndValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "5.5")
	t.Setenv("RATE_LIMIT_BURST", "11")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "30m")

	cfg, err := LoadConfig(true, "")
	require.NoError(t, err)
	assert.Equal(t, 5.5, cfg.RateLimitConfig.RPS)
	assert.Equal(t, 11, cfg.RateLimitConfig.Burst)
	assert.Equal(t, 30*time.Minute, cfg.RateLimitConfig.CleanupInterval)

	t.Setenv("RATE_LIMIT_RPS", "-1")
	_, err = LoadConfig(true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_RPS must be positive")
}

func TestLoadConfig_MalformedNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "also-not")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "eleventy")

	cfg, err := LoadConfig(true, "")
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.RateLimitConfig.RPS)
	assert.Equal(t, 40, cfg.RateLimitConfig.Burst)
	assert.Equal(t, time.Hour, cfg.RateLimitConfig.CleanupInterval)
}

func TestValidationError_ListsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_KEY", "bad")

	_, err := LoadConfig(false, "")
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	// One key problem plus four missing S3 settings, all reported at once.
	assert.Len(t, validationErr.Errors, 5)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
