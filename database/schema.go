package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"neuro-sync/models"
)

// SchemaText returns the DDL for every table. Each statement is guarded so
// the script can be applied any number of times.
func SchemaText() string {
	return `
-- Users
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	timezone TEXT NOT NULL,
	created_at TEXT NOT NULL,
	last_active TEXT NOT NULL
);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	estimated_duration INTEGER,
	actual_duration INTEGER,
	completed_at TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Habits
CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT,
	target_streak INTEGER NOT NULL DEFAULT 0 CHECK (target_streak >= 0),
	current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
	best_streak INTEGER NOT NULL DEFAULT 0 CHECK (best_streak >= 0),
	is_active INTEGER NOT NULL DEFAULT 1,
	last_completed TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Finance
CREATE TABLE IF NOT EXISTS finance_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount REAL NOT NULL,
	category TEXT NOT NULL,
	description TEXT,
	source TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	is_recurring INTEGER NOT NULL DEFAULT 0,
	transaction_date TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- XP ledger (append-only)
CREATE TABLE IF NOT EXISTS xp_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	source TEXT NOT NULL,
	points INTEGER NOT NULL CHECK (points >= 0),
	earned_date TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TRIGGER IF NOT EXISTS xp_entries_append_only
BEFORE UPDATE ON xp_entries
BEGIN
	SELECT RAISE(ABORT, 'xp_entries is append-only');
END;

-- Ledger rows leave only with their owner: the users foreign key cascades
-- after the user row is gone, so the trigger below lets that through.
CREATE TRIGGER IF NOT EXISTS xp_entries_no_delete
BEFORE DELETE ON xp_entries
WHEN EXISTS (SELECT 1 FROM users WHERE id = OLD.user_id)
BEGIN
	SELECT RAISE(ABORT, 'xp_entries is append-only');
END;

-- Achievements
CREATE TABLE IF NOT EXISTS achievements (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
	unlock_condition TEXT NOT NULL DEFAULT '',
	is_unlocked INTEGER NOT NULL DEFAULT 0,
	date_earned TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- App state (system settings and job bookkeeping)
CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at TEXT NOT NULL
);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);

-- AI response cache
CREATE TABLE IF NOT EXISTS ai_cache (
	id TEXT PRIMARY KEY,
	cache_key TEXT NOT NULL UNIQUE,
	response_data TEXT NOT NULL,
	created_at TEXT NOT NULL,
	expires_at TEXT NOT NULL
);
`
}

// IndexDefinitions returns the index statements in the order they are applied.
func IndexDefinitions() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_is_active ON habits(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_finance_transaction_date ON finance_entries(transaction_date)`,
		`CREATE INDEX IF NOT EXISTS idx_finance_category ON finance_entries(category)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_user_earned ON xp_entries(user_id, earned_date)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_cache_key ON ai_cache(cache_key)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_cache_created_at ON ai_cache(created_at)`,
	}
}

// migrations maps a schema version to the statements that bring a store from
// the previous version to it. Version 1 is the base schema. Only forward
// migrations exist.
var migrations = map[int][]string{
	1: {},
	2: {
		`CREATE INDEX IF NOT EXISTS idx_achievements_user_unlocked ON achievements(user_id, is_unlocked)`,
	},
	3: {
		`CREATE TRIGGER IF NOT EXISTS xp_entries_no_delete
BEFORE DELETE ON xp_entries
WHEN EXISTS (SELECT 1 FROM users WHERE id = OLD.user_id)
BEGIN
	SELECT RAISE(ABORT, 'xp_entries is append-only');
END;`,
	},
}

// LatestVersion is the newest schema version this binary knows.
func LatestVersion() int {
	latest := 0
	for v := range migrations {
		latest = max(latest, v)
	}
	return latest
}

// expectedColumns is the column set each table must contain. Extra columns
// are tolerated; missing ones make the store incompatible.
var expectedColumns = map[string][]string{
	models.TableUsers:          {"id", "name", "email", "timezone", "created_at", "last_active"},
	models.TableTasks:          {"id", "user_id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at", "estimated_duration", "actual_duration", "completed_at", "tags"},
	models.TableHabits:         {"id", "user_id", "title", "description", "frequency", "start_date", "end_date", "target_streak", "current_streak", "best_streak", "is_active", "last_completed", "created_at", "updated_at"},
	models.TableFinanceEntries: {"id", "user_id", "amount", "category", "description", "source", "note", "is_recurring", "transaction_date", "created_at", "updated_at", "tags"},
	models.TableXPEntries:      {"id", "user_id", "source", "points", "earned_date", "created_at"},
	models.TableAchievements:   {"id", "user_id", "title", "description", "points", "unlock_condition", "is_unlocked", "date_earned", "created_at", "updated_at"},
	models.TableAppState:       {"key", "value", "updated_at"},
	models.TableSchemaVersion:  {"version", "applied_at"},
	models.TableAICache:        {"id", "cache_key", "response_data", "created_at", "expires_at"},
}

// ApplySchema creates missing tables and indexes and checks that existing
// tables are compatible. It is safe to run repeatedly.
func (db *DB) ApplySchema(ctx context.Context) error {
	return db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		if _, err := s.Exec(ctx, SchemaText()); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		if err := verifySchema(ctx, s); err != nil {
			return err
		}
		for _, stmt := range IndexDefinitions() {
			if _, err := s.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, stmt, err)
			}
		}
		return nil
	})
}

// Migrate applies the base schema and then every forward migration newer
// than the store's current version, recording each version as it goes.
func (db *DB) Migrate(ctx context.Context) error {
	current, err := db.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	latest := LatestVersion()
	if current > latest {
		return fmt.Errorf("%w: store is at version %d, newest known is %d", ErrSchemaMismatch, current, latest)
	}

	if err := db.ApplySchema(ctx); err != nil {
		return err
	}

	for v := current + 1; v <= latest; v++ {
		err := db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
			for _, stmt := range migrations[v] {
				if _, err := s.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", v, err)
				}
			}
			return db.ApplyVersion(ctx, v)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CurrentVersion returns the highest applied schema version, or 0 for a
// store that has never been migrated.
func (db *DB) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, models.TableSchemaVersion)
		if err != nil || row == nil {
			return err
		}
		row, err = s.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) AS version FROM schema_version`)
		if err != nil {
			return err
		}
		n, ok := row["version"].(int64)
		if !ok {
			return fmt.Errorf("%w: schema_version.version is %T", ErrSchemaMismatch, row["version"])
		}
		version = int(n)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// ApplyVersion records version v as applied now.
func (db *DB) ApplyVersion(ctx context.Context, v int) error {
	if v <= 0 {
		return fmt.Errorf("invalid schema version %d", v)
	}
	return db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		_, err := s.Exec(ctx, `INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, ?)`,
			v, models.FormatTime(models.Now()))
		return err
	})
}

func verifySchema(ctx context.Context, s *Scope) error {
	tables := make([]string, 0, len(expectedColumns))
	for table := range expectedColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var problems []string
	for _, table := range tables {
		rows, err := s.QueryRows(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(rows))
		for _, row := range rows {
			if name, ok := row["name"].(string); ok {
				have[name] = true
			}
		}
		for _, col := range expectedColumns[table] {
			if !have[col] {
				problems = append(problems, table+"."+col)
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrSchemaMismatch, strings.Join(problems, ", "))
	}
	return nil
}
