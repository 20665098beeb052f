package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type migration struct {
	name  string
	query string
}

var migrations = []migration{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(32) NOT NULL,
			points NUMERIC(14, 2) NOT NULL DEFAULT 0,
			referral_code VARCHAR(16) NOT NULL,
			referred_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_referral_code_key UNIQUE (referral_code)
		)
	`},
	{"referrals table", `
		CREATE TABLE IF NOT EXISTS referrals (
			id BIGSERIAL PRIMARY KEY,
			referrer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			referred_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"entries table", `
		CREATE TABLE IF NOT EXISTS entries (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(32) NOT NULL,
			price_per_unit NUMERIC(20, 6) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			currency VARCHAR(8) NOT NULL,
			usd_rate NUMERIC(24, 10) NOT NULL,
			usd_amount NUMERIC(20, 6) NOT NULL,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"entries index", `
		CREATE INDEX IF NOT EXISTS idx_entries_user_created ON entries(user_id, created_at DESC)
	`},
	{"achievements table", `
		CREATE TABLE IF NOT EXISTS achievements (
			id BIGSERIAL PRIMARY KEY,
			code VARCHAR(64) NOT NULL UNIQUE,
			name_en VARCHAR(255) NOT NULL,
			name_ru VARCHAR(255) NOT NULL,
			description_en TEXT NOT NULL,
			description_ru TEXT NOT NULL,
			icon VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"user_achievements table", `
		CREATE TABLE IF NOT EXISTS user_achievements (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id BIGINT NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, achievement_id)
		)
	`},
	{"presets table", `
		CREATE TABLE IF NOT EXISTS presets (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			icon VARCHAR(16) NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL,
			price NUMERIC(20, 6) NOT NULL,
			category VARCHAR(32) NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			UNIQUE (user_id, position)
		)
	`},
	{"goals table", `
		CREATE TABLE IF NOT EXISTS goals (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			target_amount NUMERIC(20, 6) NOT NULL,
			currency VARCHAR(8) NOT NULL,
			usd_target NUMERIC(20, 6) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"task_completions table", `
		CREATE TABLE IF NOT EXISTS task_completions (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			task_code VARCHAR(64) NOT NULL,
			day VARCHAR(10) NOT NULL,
			points_earned NUMERIC(14, 2) NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, task_code, day)
		)
	`},
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.query); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Msgf("Migration %d: %s created", i+1, m.name)
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
