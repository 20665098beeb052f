package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

const userColumns = `id, username, points_cents, referral_code, referred_by, created_at, updated_at`

// UserRepository handles users and referral links.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user       model.User
		cents      int64
		referredBy sql.NullInt64
		created    int64
		updated    int64
	)
	err := row.Scan(&user.ID, &user.Username, &cents, &user.ReferralCode, &referredBy, &created, &updated)
	if err != nil {
		return nil, err
	}
	user.Points = fromCents(cents)
	if referredBy.Valid {
		id := referredBy.Int64
		user.ReferredBy = &id
	}
	user.CreatedAt = fromMicros(created)
	user.UpdatedAt = fromMicros(updated)
	return &user, nil
}

// Create inserts a user with zero points. When referrerID is set the referral
// row is written in the same transaction.
func (r *UserRepository) Create(ctx context.Context, username, referralCode string, referrerID *int64) (*model.User, error) {
	const insertUser = `
		INSERT INTO users (username, points_cents, referral_code, referred_by, created_at, updated_at)
		VALUES (?, 0, ?, ?, ?, ?)
		RETURNING ` + userColumns
	const insertReferral = `INSERT INTO referrals (referrer_id, referred_id, created_at) VALUES (?, ?, ?)`

	now := toMicros(time.Now())
	var user *model.User
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRowContext(ctx, insertUser, username, referralCode, referrerID, now, now))
		if err != nil {
			return err
		}
		if referrerID == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, insertReferral, *referrerID, user.ID, now)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return nil, repository.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByReferralCode retrieves the owner of a referral code.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.getBy(ctx, "referral_code", code)
}

// IncrementPoints atomically adds delta to the user's points and returns the new total.
func (r *UserRepository) IncrementPoints(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	return addPoints(ctx, r.db, id, delta)
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func addPoints(ctx context.Context, q execQuerier, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		UPDATE users
		SET points_cents = points_cents + ?, updated_at = ?
		WHERE id = ?
		RETURNING points_cents
	`

	var cents int64
	err := q.QueryRowContext(ctx, query, toCents(delta), toMicros(time.Now()), id).Scan(&cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, repository.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to increment points: %w", err)
	}
	return fromCents(cents), nil
}

// GetTopUsers retrieves the top N users by points. Ties keep registration order.
func (r *UserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY points_cents DESC, id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Position returns the user's 1-based leaderboard position.
func (r *UserRepository) Position(ctx context.Context, id int64) (int, error) {
	const query = `
		SELECT COUNT(*) + 1
		FROM users u, users me
		WHERE me.id = ?
		  AND (u.points_cents > me.points_cents OR (u.points_cents = me.points_cents AND u.id < me.id))
	`

	if _, err := r.GetByID(ctx, id); err != nil {
		return 0, err
	}

	var position int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to get leaderboard position: %w", err)
	}
	return position, nil
}

// CountUsers returns the number of registered users.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountReferrals returns how many users registered with this user's code.
func (r *UserRepository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM referrals WHERE referrer_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

// ListReferrals returns the users referred by userID, newest first.
func (r *UserRepository) ListReferrals(ctx context.Context, userID int64) ([]model.ReferredUser, error) {
	const query = `
		SELECT r.id, u.id, u.username, u.points_cents, r.created_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.referrer_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	var referred []model.ReferredUser
	for rows.Next() {
		var (
			ru     model.ReferredUser
			cents  int64
			joined int64
		)
		if err := rows.Scan(&ru.ReferralID, &ru.UserID, &ru.Username, &cents, &joined); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		ru.Points = fromCents(cents)
		ru.JoinedAt = fromMicros(joined)
		referred = append(referred, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referrals: %w", err)
	}
	return referred, nil
}

// GetReferrer returns the user who referred userID, or nil if nobody did.
func (r *UserRepository) GetReferrer(ctx context.Context, userID int64) (*model.User, error) {
	const query = `
		SELECT u.id, u.username, u.points_cents, u.referral_code, u.referred_by, u.created_at, u.updated_at
		FROM referrals r
		JOIN users u ON u.id = r.referrer_id
		WHERE r.referred_id = ?
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get referrer: %w", err)
	}
	return user, nil
}

// Exists checks if a user exists.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
