package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the insight-api service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Meta       MetaConfig
	HubSpot    HubSpotConfig
	Cache      CacheConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Sync       SyncConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the insight-history store.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

// MetaConfig configures the Meta Ads Graph API client.
type MetaConfig struct {
	BaseURL     string
	AccessToken string
	AdAccountID string
	APIVersion  string
	Timeout     time.Duration
	MaxRetries  int
	RPS         float64
}

// HubSpotConfig configures the HubSpot CRM client.
type HubSpotConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	MaxRetries  int
}

// CacheConfig controls the snapshot cache collaborator.
type CacheConfig struct {
	TTL time.Duration
}

type AuthConfig struct {
	Enabled   bool
	APIKey    string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// SyncConfig controls the background vendor sync loop.
type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("INSIGHT_HTTP_ADDR", ":8080"),
			Env:             getEnv("INSIGHT_ENV", "development"),
			ShutdownTimeout: getDurationEnv("INSIGHT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("INSIGHT_DB_HOST", "localhost"),
			Port:     getIntEnv("INSIGHT_DB_PORT", 5432),
			User:     getEnv("INSIGHT_DB_USER", "insight"),
			Password: getEnv("INSIGHT_DB_PASSWORD", "insight_secret"),
			DBName:   getEnv("INSIGHT_DB_NAME", "insight"),
			SSLMode:  getEnv("INSIGHT_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("INSIGHT_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("INSIGHT_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("INSIGHT_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("INSIGHT_REDIS_PASSWORD", ""),
			DB:       getIntEnv("INSIGHT_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("INSIGHT_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("INSIGHT_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("INSIGHT_CLICKHOUSE_DB", "insight"),
			User:     getEnv("INSIGHT_CLICKHOUSE_USER", "default"),
			Password: getEnv("INSIGHT_CLICKHOUSE_PASSWORD", ""),
		},
		Meta: MetaConfig{
			BaseURL:     getEnv("INSIGHT_META_BASE_URL", "https://graph.facebook.com"),
			AccessToken: getEnv("INSIGHT_META_ACCESS_TOKEN", ""),
			AdAccountID: getEnv("INSIGHT_META_AD_ACCOUNT_ID", ""),
			APIVersion:  getEnv("INSIGHT_META_API_VERSION", "v19.0"),
			Timeout:     getDurationEnv("INSIGHT_META_TIMEOUT", 15*time.Second),
			MaxRetries:  getIntEnv("INSIGHT_META_MAX_RETRIES", 3),
			RPS:         getFloatEnv("INSIGHT_META_RPS", 5),
		},
		HubSpot: HubSpotConfig{
			BaseURL:     getEnv("INSIGHT_HUBSPOT_BASE_URL", "https://api.hubapi.com"),
			AccessToken: getEnv("INSIGHT_HUBSPOT_ACCESS_TOKEN", ""),
			Timeout:     getDurationEnv("INSIGHT_HUBSPOT_TIMEOUT", 15*time.Second),
			MaxRetries:  getIntEnv("INSIGHT_HUBSPOT_MAX_RETRIES", 3),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("INSIGHT_CACHE_TTL", 1*time.Hour),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("INSIGHT_AUTH_ENABLED", false),
			APIKey:    getEnv("INSIGHT_API_KEY", ""),
			SkipPaths: getSliceEnv("INSIGHT_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("INSIGHT_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("INSIGHT_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("INSIGHT_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("INSIGHT_LOG_LEVEL", "info"),
			Format: getEnv("INSIGHT_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("INSIGHT_METRICS_ENABLED", true),
			Path:    getEnv("INSIGHT_METRICS_PATH", "/metrics"),
		},
		Sync: SyncConfig{
			Enabled:  getBoolEnv("INSIGHT_SYNC_ENABLED", false),
			Interval: getDurationEnv("INSIGHT_SYNC_INTERVAL", 1*time.Hour),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("INSIGHT_API_KEY is required when auth is enabled")
	}
	if c.Sync.Enabled && c.Meta.AccessToken == "" {
		return fmt.Errorf("INSIGHT_META_ACCESS_TOKEN is required when sync is enabled")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("INSIGHT_CACHE_TTL must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
