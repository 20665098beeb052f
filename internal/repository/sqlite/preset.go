package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"refusal-tracker/internal/model"
)

// PresetRepository handles user presets. Tags are stored as a JSON array.
type PresetRepository struct {
	db *DB
}

// NewPresetRepository creates a new PresetRepository instance.
func NewPresetRepository(db *DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// List returns the user's saved presets ordered by position.
func (r *PresetRepository) List(ctx context.Context, userID int64) ([]model.Preset, error) {
	const query = `
		SELECT id, user_id, position, icon, name, price, category, tags
		FROM presets
		WHERE user_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var presets []model.Preset
	for rows.Next() {
		var (
			p    model.Preset
			tags string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Position, &p.Icon, &p.Name, &p.Price, &p.Category, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode preset tags: %w", err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presets: %w", err)
	}
	return presets, nil
}

// ReplaceAll swaps the user's presets for presets in one transaction.
func (r *PresetRepository) ReplaceAll(ctx context.Context, userID int64, presets []model.Preset) error {
	const insertQuery = `
		INSERT INTO presets (user_id, position, icon, name, price, category, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM presets WHERE user_id = ?`, userID); err != nil {
			return err
		}
		for i, p := range presets {
			tags := p.Tags
			if tags == nil {
				tags = []model.WhyTag{}
			}
			encoded, err := json.Marshal(tags)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertQuery, userID, i, p.Icon, p.Name, p.Price.String(), p.Category, string(encoded)); err != nil {
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete presets: %w", err)
	}
	return nil
}
