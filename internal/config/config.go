package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	// ClientOnly marks this instance as a mirror of a remote journal.
	// A client-only instance must not re-emit audit entries for changes
	// it did not originate, so audit logging is suppressed facade-wide.
	ClientOnly bool

	HTTPAddr string

	OTLPEndpoint string

	// AuditThrottle is the per-entry delay applied after audit writes
	// during batch syncs. Backpressure control, not a correctness knob.
	AuditThrottle time.Duration

	// RetentionDays bounds the age-based purge of historical records.
	RetentionDays int

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime time.Duration
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_SERVICE", "therapysync")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CLIENT_ONLY", false)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("AUDIT_THROTTLE_MS", 10)
	v.SetDefault("RETENTION_DAYS", 90)
	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "therapysync")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 25)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME_MIN", 30)

	return Config{
		AppName:           v.GetString("APP_SERVICE"),
		AppVersion:        v.GetString("APP_VERSION"),
		Environment:       v.GetString("ENVIRONMENT"),
		ClientOnly:        v.GetBool("CLIENT_ONLY"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		OTLPEndpoint:      v.GetString("OTLP_ENDPOINT"),
		AuditThrottle:     time.Duration(v.GetInt("AUDIT_THROTTLE_MS")) * time.Millisecond,
		RetentionDays:     v.GetInt("RETENTION_DAYS"),
		DBType:            strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_TYPE"))),
		DBHost:            v.GetString("DATABASE_HOST"),
		DBPort:            v.GetString("DATABASE_PORT"),
		DBName:            v.GetString("DATABASE_NAME"),
		DBUser:            v.GetString("DATABASE_USER"),
		DBPassword:        v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:         v.GetString("DATABASE_SSLMODE"),
		DBMaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
		DBMaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
		DBConnMaxLifetime: time.Duration(v.GetInt("DATABASE_CONN_MAX_LIFETIME_MIN")) * time.Minute,
	}
}

// IsDev reports whether the instance runs in a development-like environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
