package sqlite

import (
	"context"
	"fmt"

	"refusal-tracker/internal/model"
)

const goalColumns = `id, user_id, name, target_amount, currency, usd_target, is_active, created_at`

// GoalRepository handles savings goals.
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new GoalRepository instance.
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g       model.Goal
		created int64
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.Currency, &g.USDTarget, &g.IsActive, &created); err != nil {
		return nil, err
	}
	g.CreatedAt = fromMicros(created)
	return &g, nil
}

// Create inserts an active goal.
func (r *GoalRepository) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	const query = `
		INSERT INTO goals (user_id, name, target_amount, currency, usd_target, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		RETURNING ` + goalColumns

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query,
		g.UserID, g.Name, g.TargetAmount.String(), g.Currency, g.USDTarget.String(), toMicros(g.CreatedAt)))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

// ListActive returns the user's active goals, newest first.
func (r *GoalRepository) ListActive(ctx context.Context, userID int64) ([]model.Goal, error) {
	const query = `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// CountActive returns the number of active goals.
func (r *GoalRepository) CountActive(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals WHERE user_id = ? AND is_active = 1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return count, nil
}
