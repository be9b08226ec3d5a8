package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"neuro-sync/database"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Mode              database.Mode
	LogLevel          string
	DBPath            string
	DBTimeout         time.Duration
	DBCacheSize       int
	DBMmapSize        int64
	DBBatchSize       int
	DBBulkTimeout     time.Duration
	ReconcileInterval time.Duration
	DefaultTimezone   string
}

var AppConfig *Config

// Load reads .env (if present) and the environment. Malformed numbers and
// durations fall back to their defaults with a warning.
func Load() (*Config, error) {
	_ = godotenv.Load()

	mode, err := database.ParseMode(GetEnv("APP_MODE", string(database.ModeDevelopment)))
	if err != nil {
		return nil, fmt.Errorf("APP_MODE: %w", err)
	}

	cfg := &Config{
		Port:              GetEnv("PORT", "5000"),
		Mode:              mode,
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		DBPath:            GetEnv("DB_PATH", "./data/neuro_sync.db"),
		DBTimeout:         getDuration("DB_TIMEOUT", 30*time.Second),
		DBCacheSize:       getInt("DB_CACHE_SIZE", 10000),
		DBMmapSize:        int64(getInt("DB_MMAP_SIZE", 268435456)),
		DBBatchSize:       getInt("DB_BATCH_SIZE", 1000),
		DBBulkTimeout:     getDuration("DB_BULK_TIMEOUT", 60*time.Second),
		ReconcileInterval: getDuration("RECONCILE_INTERVAL", time.Hour),
		DefaultTimezone:   GetEnv("DEFAULT_TIMEZONE", "Africa/Nairobi"),
	}

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}

	AppConfig = cfg
	return cfg, nil
}

// Database returns the store settings. The database package never reads the
// environment itself.
func (c *Config) Database() database.Settings {
	return database.Settings{
		Path:        c.DBPath,
		Mode:        c.Mode,
		Timeout:     c.DBTimeout,
		CacheSize:   c.DBCacheSize,
		MmapSize:    c.DBMmapSize,
		BatchSize:   c.DBBatchSize,
		BulkTimeout: c.DBBulkTimeout,
	}
}

func (c *Config) IsProduction() bool {
	return c.Mode == database.ModeProduction
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}
