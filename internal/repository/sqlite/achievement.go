package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

const achievementColumns = `id, code, name_en, name_ru, description_en, description_ru, icon, created_at`

// AchievementRepository handles the achievement catalog and user unlocks.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new AchievementRepository instance.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func scanAchievement(row rowScanner) (*model.Achievement, error) {
	var (
		a       model.Achievement
		created int64
	)
	if err := row.Scan(&a.ID, &a.Code, &a.NameEn, &a.NameRu, &a.DescriptionEn, &a.DescriptionRu, &a.Icon, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = fromMicros(created)
	return &a, nil
}

// Seed inserts catalog achievements that are not stored yet.
func (r *AchievementRepository) Seed(ctx context.Context, catalog []model.Achievement) (int, error) {
	const query = `
		INSERT INTO achievements (code, name_en, name_ru, description_en, description_ru, icon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
	`

	inserted := 0
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for i, a := range catalog {
			// Offset by position so catalog order survives equal clocks.
			created := toMicros(now) + int64(i)
			res, err := tx.ExecContext(ctx, query, a.Code, a.NameEn, a.NameRu, a.DescriptionEn, a.DescriptionRu, a.Icon, created)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
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
	const query = `SELECT ` + achievementColumns + ` FROM achievements WHERE code = ?`

	a, err := scanAchievement(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("failed to find achievement: %w", err)
	}
	return a, nil
}

// ListAll returns the catalog in insertion order.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]model.Achievement, error) {
	const query = `SELECT ` + achievementColumns + ` FROM achievements ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
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
	const query = `SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = ? AND achievement_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unlock: %w", err)
	}
	return exists, nil
}

// Grant records the unlock if absent and reports whether a row was created.
func (r *AchievementRepository) Grant(ctx context.Context, userID, achievementID int64) (bool, error) {
	const query = `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, userID, achievementID, toMicros(time.Now()))
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	return n == 1, nil
}

// ListUnlocked returns the user's unlocks, newest first.
func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	const query = `
		SELECT user_id, achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = ?
		ORDER BY unlocked_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	defer rows.Close()

	var unlocks []model.UserAchievement
	for rows.Next() {
		var (
			ua       model.UserAchievement
			unlocked int64
		)
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &unlocked); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		ua.UnlockedAt = fromMicros(unlocked)
		unlocks = append(unlocks, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlocks: %w", err)
	}
	return unlocks, nil
}
