package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"refusal-tracker/internal/model"
)

const goalColumns = `id, user_id, name, target_amount, currency, usd_target, is_active, created_at`

// GoalRepository handles savings goals.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository instance.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

func scanGoal(row pgx.Row) (*model.Goal, error) {
	var g model.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.Currency, &g.USDTarget, &g.IsActive, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts an active goal.
func (r *GoalRepository) Create(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	const query = `
		INSERT INTO goals (user_id, name, target_amount, currency, usd_target, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING ` + goalColumns

	goal, err := scanGoal(r.pool.QueryRow(ctx, query, g.UserID, g.Name, g.TargetAmount, g.Currency, g.USDTarget, g.CreatedAt))
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
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
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
	const query = `SELECT COUNT(*) FROM goals WHERE user_id = $1 AND is_active`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count goals: %w", err)
	}
	return count, nil
}
