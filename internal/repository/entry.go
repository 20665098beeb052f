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

const entryColumns = `id, user_id, name, category, price_per_unit, quantity, currency, usd_rate, usd_amount, note, created_at`

// EntryRepository handles entry persistence.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository instance.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func scanEntry(row pgx.Row) (*model.Entry, error) {
	var e model.Entry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Name,
		&e.Category,
		&e.PricePerUnit,
		&e.Quantity,
		&e.Currency,
		&e.USDRate,
		&e.USDAmount,
		&e.Note,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateWithPoints inserts the entry and adds points to its owner in one
// transaction. It returns the stored entry and the owner's new point total.
func (r *EntryRepository) CreateWithPoints(ctx context.Context, e *model.Entry, points decimal.Decimal) (*model.Entry, decimal.Decimal, error) {
	const insertEntry = `
		INSERT INTO entries (user_id, name, category, price_per_unit, quantity, currency, usd_rate, usd_amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + entryColumns
	const addPoints = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`

	var (
		stored *model.Entry
		total  decimal.Decimal
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		stored, err = scanEntry(tx.QueryRow(ctx, insertEntry,
			e.UserID, e.Name, e.Category, e.PricePerUnit, e.Quantity,
			e.Currency, e.USDRate, e.USDAmount, e.Note, e.CreatedAt,
		))
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		if err := tx.QueryRow(ctx, addPoints, e.UserID, points).Scan(&total); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to increment points: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, decimal.Zero, err
		}
		return nil, decimal.Zero, fmt.Errorf("failed to create entry: %w", err)
	}

	return stored, total, nil
}

// ListByUser returns the user's entries inside rng, newest first.
func (r *EntryRepository) ListByUser(ctx context.Context, userID int64, rng model.DateRange) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1`
	args := []any{userID}
	if !rng.From.IsZero() {
		args = append(args, rng.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}
