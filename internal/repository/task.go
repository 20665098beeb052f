package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// TaskRepository handles daily task completions.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository instance.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// ListCompleted returns the tasks the user completed on day.
func (r *TaskRepository) ListCompleted(ctx context.Context, userID int64, day string) ([]model.TaskCompletion, error) {
	const query = `
		SELECT user_id, task_code, day, points_earned, completed_at
		FROM task_completions
		WHERE user_id = $1 AND day = $2
		ORDER BY completed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.TaskCompletion
	for rows.Next() {
		var c model.TaskCompletion
		if err := rows.Scan(&c.UserID, &c.TaskCode, &c.Day, &c.PointsEarned, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return completions, nil
}

// CompleteWithPoints records the completion and credits its points in one
// transaction. A second completion of the same task on the same day returns
// ErrAlreadyCompleted and changes nothing.
func (r *TaskRepository) CompleteWithPoints(ctx context.Context, c *model.TaskCompletion) (decimal.Decimal, error) {
	const insertCompletion = `
		INSERT INTO task_completions (user_id, task_code, day, points_earned, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, task_code, day) DO NOTHING
	`
	const addPoints = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`

	var total decimal.Decimal
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertCompletion, c.UserID, c.TaskCode, c.Day, c.PointsEarned, c.CompletedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyCompleted
		}
		if err := tx.QueryRow(ctx, addPoints, c.UserID, c.PointsEarned).Scan(&total); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrUserNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("failed to complete task: %w", err)
	}
	return total, nil
}
