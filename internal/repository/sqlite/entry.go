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

const entryColumns = `id, user_id, name, category, price_per_unit, quantity, currency, usd_rate, usd_amount, note, created_at`

// EntryRepository handles entry persistence.
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new EntryRepository instance.
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		e       model.Entry
		note    sql.NullString
		created int64
	)
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
		&note,
		&created,
	)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		e.Note = &note.String
	}
	e.CreatedAt = fromMicros(created)
	return &e, nil
}

// CreateWithPoints inserts the entry and adds points to its owner in one
// transaction. It returns the stored entry and the owner's new point total.
func (r *EntryRepository) CreateWithPoints(ctx context.Context, e *model.Entry, points decimal.Decimal) (*model.Entry, decimal.Decimal, error) {
	const insertEntry = `
		INSERT INTO entries (user_id, name, category, price_per_unit, quantity, currency, usd_rate, usd_amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + entryColumns

	var (
		stored *model.Entry
		total  decimal.Decimal
	)
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		stored, err = scanEntry(tx.QueryRowContext(ctx, insertEntry,
			e.UserID, e.Name, e.Category, e.PricePerUnit.String(), e.Quantity,
			e.Currency, e.USDRate.String(), e.USDAmount.String(), e.Note, toMicros(e.CreatedAt),
		))
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		total, err = addPoints(ctx, tx, e.UserID, points)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, decimal.Zero, err
		}
		return nil, decimal.Zero, fmt.Errorf("failed to create entry: %w", err)
	}
	return stored, total, nil
}

// ListByUser returns the user's entries inside rng, newest first.
func (r *EntryRepository) ListByUser(ctx context.Context, userID int64, rng model.DateRange) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ?`
	args := []any{userID}
	if !rng.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, toMicros(rng.From))
	}
	if !rng.To.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, toMicros(rng.To))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
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
