package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"refusal-tracker/internal/model"
)

const achievementColumns = `id, code, name_en, name_ru, description_en, description_ru, icon, created_at`

// AchievementRepository handles the achievement catalog and user unlocks.
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository instance.
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

func scanAchievement(row pgx.Row) (*model.Achievement, error) {
	var a model.Achievement
	err := row.Scan(
		&a.ID,
		&a.Code,
		&a.NameEn,
		&a.NameRu,
		&a.DescriptionEn,
		&a.DescriptionRu,
		&a.Icon,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Seed inserts catalog achievements that are not stored yet. Existing rows are left untouched.
func (r *AchievementRepository) Seed(ctx context.Context, catalog []model.Achievement) (int, error) {
	const query = `
		INSERT INTO achievements (code, name_en, name_ru, description_en, description_ru, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (code) DO NOTHING
	`

	inserted := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range catalog {
			tag, err := tx.Exec(ctx, query, a.Code, a.NameEn, a.NameRu, a.DescriptionEn, a.DescriptionRu, a.Icon)
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed achievements: %w", err)
	}
	return inserted, nil
}

// FindByCode returns the achievement with code or ErrAchievementNotFound.
func (r *AchievementRepository) FindByCode(ctx context.Context, code string) (*model.Achievement, error) {
	const query = `SELECT ` + achievementColumns + ` FROM achievements WHERE code = $1`

	a, err := scanAchievement(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAchievementNotFound
		}
		return nil, fmt.Errorf("failed to find achievement: %w", err)
	}
	return a, nil
}

// ListAll returns the catalog in insertion order.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]model.Achievement, error) {
	const query = `SELECT ` + achievementColumns + ` FROM achievements ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// HasUnlocked reports whether the user already holds the achievement.
func (r *AchievementRepository) HasUnlocked(ctx context.Context, userID, achievementID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unlock: %w", err)
	}
	return exists, nil
}

// Grant records the unlock if absent and reports whether a row was created.
// Granting an unlocked achievement again is a no-op.
func (r *AchievementRepository) Grant(ctx context.Context, userID, achievementID int64) (bool, error) {
	const query = `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnlocked returns the user's unlocks, newest first.
func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	const query = `
		SELECT user_id, achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	defer rows.Close()

	var unlocks []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		unlocks = append(unlocks, ua)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlocks: %w", err)
	}

	return unlocks, nil
}
