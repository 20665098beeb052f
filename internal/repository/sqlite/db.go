// Package sqlite provides an embedded SQLite data access layer with the same
// contracts as the PostgreSQL repositories. Points are stored as integer
// hundredths, amounts as decimal strings and timestamps as Unix microseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps the SQLite handle.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers; transactions must not touch the pool.
	handle.SetMaxOpenConns(1)

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite database")
	return &DB{DB: handle, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	log.Info().Msg("SQLite database closed")
	return db.DB.Close()
}

// withTx runs fn inside a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

var migrations = []struct {
	name  string
	query string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			points_cents INTEGER NOT NULL DEFAULT 0,
			referral_code TEXT NOT NULL UNIQUE,
			referred_by INTEGER REFERENCES users(id) ON DELETE SET NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`},
	{"referrals table", `
		CREATE TABLE IF NOT EXISTS referrals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			referrer_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			referred_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL
		)
	`},
	{"entries table", `
		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			price_per_unit TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			currency TEXT NOT NULL,
			usd_rate TEXT NOT NULL,
			usd_amount TEXT NOT NULL,
			note TEXT,
			created_at INTEGER NOT NULL
		)
	`},
	{"entries index", `
		CREATE INDEX IF NOT EXISTS idx_entries_user_created ON entries(user_id, created_at DESC)
	`},
	{"achievements table", `
		CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			name_en TEXT NOT NULL,
			name_ru TEXT NOT NULL,
			description_en TEXT NOT NULL,
			description_ru TEXT NOT NULL,
			icon TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`},
	{"user_achievements table", `
		CREATE TABLE IF NOT EXISTS user_achievements (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id INTEGER NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, achievement_id)
		)
	`},
	{"presets table", `
		CREATE TABLE IF NOT EXISTS presets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			UNIQUE (user_id, position)
		)
	`},
	{"goals table", `
		CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			target_amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			usd_target TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)
	`},
	{"task_completions table", `
		CREATE TABLE IF NOT EXISTS task_completions (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			task_code TEXT NOT NULL,
			day TEXT NOT NULL,
			points_cents INTEGER NOT NULL,
			completed_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, task_code, day)
		)
	`},
}

// Migrate creates the schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", i+1, m.name, err)
		}
		log.Debug().Msgf("Migration %d: %s created", i+1, m.name)
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// isUniqueViolation reports whether err is a UNIQUE failure on column
// (written as table.column). An empty column matches any unique failure.
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Primary key conflicts report the same message as UNIQUE ones.
	if sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT || !strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
		return false
	}
	return column == "" || strings.Contains(sqliteErr.Error(), column)
}
