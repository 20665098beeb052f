package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"refusal-tracker/internal/model"
)

// PresetRepository handles user presets and their why tags.
type PresetRepository struct {
	pool *pgxpool.Pool
}

// NewPresetRepository creates a new PresetRepository instance.
func NewPresetRepository(pool *pgxpool.Pool) *PresetRepository {
	return &PresetRepository{pool: pool}
}

// List returns the user's saved presets ordered by position.
func (r *PresetRepository) List(ctx context.Context, userID int64) ([]model.Preset, error) {
	const query = `
		SELECT id, user_id, position, icon, name, price, category, tags
		FROM presets
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var presets []model.Preset
	for rows.Next() {
		var (
			p    model.Preset
			tags []string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Position, &p.Icon, &p.Name, &p.Price, &p.Category, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		p.Tags = toWhyTags(tags)
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presets: %w", err)
	}

	return presets, nil
}

// ReplaceAll swaps the user's presets for presets in one transaction.
// Positions are reassigned from slice order.
func (r *PresetRepository) ReplaceAll(ctx context.Context, userID int64, presets []model.Preset) error {
	const deleteQuery = `DELETE FROM presets WHERE user_id = $1`
	const insertQuery = `
		INSERT INTO presets (user_id, position, icon, name, price, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteQuery, userID); err != nil {
			return err
		}
		for i, p := range presets {
			if _, err := tx.Exec(ctx, insertQuery, userID, i, p.Icon, p.Name, p.Price, p.Category, fromWhyTags(p.Tags)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace presets: %w", err)
	}
	return nil
}

// DeleteAll removes the user's saved presets.
func (r *PresetRepository) DeleteAll(ctx context.Context, userID int64) error {
	const query = `DELETE FROM presets WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete presets: %w", err)
	}
	return nil
}

func toWhyTags(tags []string) []model.WhyTag {
	out := make([]model.WhyTag, len(tags))
	for i, t := range tags {
		out[i] = model.WhyTag(t)
	}
	return out
}

func fromWhyTags(tags []model.WhyTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
