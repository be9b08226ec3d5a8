package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Mode selects the synchronous durability level applied to every connection.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeTesting     Mode = "testing"
	ModeProduction  Mode = "production"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDevelopment, ModeTesting, ModeProduction:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Settings configures the store. It is passed in explicitly; nothing in this
// package reads the environment.
type Settings struct {
	Path        string
	Mode        Mode
	Timeout     time.Duration
	CacheSize   int
	MmapSize    int64
	BatchSize   int
	BulkTimeout time.Duration
}

// DefaultSettings returns the production-independent defaults for a store at path.
func DefaultSettings(path string) Settings {
	return Settings{
		Path:        path,
		Mode:        ModeDevelopment,
		Timeout:     30 * time.Second,
		CacheSize:   10000,
		MmapSize:    268435456,
		BatchSize:   1000,
		BulkTimeout: 60 * time.Second,
	}
}

func (s Settings) synchronous() string {
	switch s.Mode {
	case ModeDevelopment:
		return "OFF"
	case ModeProduction:
		return "FULL"
	default:
		return "NORMAL"
	}
}

// pragmas are applied to each new connection; SQLite does not persist most of
// them across opens. auto_vacuum must precede any table creation.
func (s Settings) pragmas() []string {
	return []string{
		"PRAGMA auto_vacuum = FULL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = " + s.synchronous(),
		fmt.Sprintf("PRAGMA cache_size = %d", s.CacheSize),
		"PRAGMA temp_store = MEMORY",
		fmt.Sprintf("PRAGMA mmap_size = %d", s.MmapSize),
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.Timeout.Milliseconds()),
	}
}

// DB is the connection manager for the single store file. It is the only
// type that opens raw connections.
type DB struct {
	sql      *sql.DB
	settings Settings
}

// connector opens connections through a driver whose connect hook applies
// the configured pragmas.
type connector struct {
	dsn    string
	driver *sqlite3.SQLiteDriver
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *connector) Driver() driver.Driver {
	return c.driver
}

func New(settings Settings) (*DB, error) {
	if settings.Path == "" {
		return nil, errors.New("database path is required")
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = 1000
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.BulkTimeout <= 0 {
		settings.BulkTimeout = 60 * time.Second
	}

	// Ensure directory exists
	dir := filepath.Dir(settings.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	pragmas := settings.pragmas()
	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range pragmas {
				if _, err := conn.Exec(pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return nil
		},
	}
	db := sql.OpenDB(&connector{dsn: settings.Path, driver: drv})

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", classify(err))
	}

	return &DB{sql: db, settings: settings}, nil
}

func (db *DB) Settings() Settings {
	return db.settings
}

func (db *DB) Close() error {
	return db.sql.Close()
}

// ConnectionInfo describes the store for backup and diagnostic tooling.
type ConnectionInfo struct {
	Path          string `json:"path"`
	Exists        bool   `json:"exists"`
	SizeBytes     int64  `json:"size_bytes"`
	SchemaVersion int    `json:"schema_version"`
}

func (db *DB) Info(ctx context.Context) (*ConnectionInfo, error) {
	info := &ConnectionInfo{Path: db.settings.Path}
	stat, err := os.Stat(db.settings.Path)
	switch {
	case err == nil:
		info.Exists = true
		info.SizeBytes = stat.Size()
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("stat database: %w", err)
	}

	version, err := db.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	info.SchemaVersion = version
	return info, nil
}
