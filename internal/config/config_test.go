package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "therapysync", cfg.AppName)
	require.False(t, cfg.ClientOnly)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 10*time.Millisecond, cfg.AuditThrottle)
	require.Equal(t, 90, cfg.RetentionDays)
	require.Equal(t, "postgres", cfg.DBType)
	require.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLIENT_ONLY", "true")
	t.Setenv("AUDIT_THROTTLE_MS", "0")
	t.Setenv("RETENTION_DAYS", "30")
	t.Setenv("DATABASE_TYPE", " SQLite ")

	cfg := Load()

	require.True(t, cfg.ClientOnly)
	require.Zero(t, cfg.AuditThrottle)
	require.Equal(t, 30, cfg.RetentionDays)
	require.Equal(t, "sqlite", cfg.DBType)
}

func TestIsDev(t *testing.T) {
	require.True(t, Config{Environment: "development"}.IsDev())
	require.True(t, Config{Environment: "Local"}.IsDev())
	require.False(t, Config{Environment: "production"}.IsDev())
}
