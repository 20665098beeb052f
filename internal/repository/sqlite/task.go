package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

// TaskRepository handles daily task completions.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository instance.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListCompleted returns the tasks the user completed on day.
func (r *TaskRepository) ListCompleted(ctx context.Context, userID int64, day string) ([]model.TaskCompletion, error) {
	const query = `
		SELECT user_id, task_code, day, points_cents, completed_at
		FROM task_completions
		WHERE user_id = ? AND day = ?
		ORDER BY completed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.TaskCompletion
	for rows.Next() {
		var (
			c         model.TaskCompletion
			cents     int64
			completed int64
		)
		if err := rows.Scan(&c.UserID, &c.TaskCode, &c.Day, &cents, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		c.PointsEarned = fromCents(cents)
		c.CompletedAt = fromMicros(completed)
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}
	return completions, nil
}

// CompleteWithPoints records the completion and credits its points in one
// transaction. A repeat for the same day returns ErrAlreadyCompleted.
func (r *TaskRepository) CompleteWithPoints(ctx context.Context, c *model.TaskCompletion) (decimal.Decimal, error) {
	const insertCompletion = `
		INSERT INTO task_completions (user_id, task_code, day, points_cents, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, task_code, day) DO NOTHING
	`

	var total decimal.Decimal
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertCompletion, c.UserID, c.TaskCode, c.Day, toCents(c.PointsEarned), toMicros(c.CompletedAt))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrAlreadyCompleted
		}
		total, err = addPoints(ctx, tx, c.UserID, c.PointsEarned)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) || errors.Is(err, repository.ErrUserNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("failed to complete task: %w", err)
	}
	return total, nil
}
