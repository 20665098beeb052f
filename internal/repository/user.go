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

const userColumns = `id, username, points, referral_code, referred_by, created_at, updated_at`

// UserRepository handles users and referral links.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Points,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user with zero points. When referrerID is set the referral
// row is written in the same transaction.
func (r *UserRepository) Create(ctx context.Context, username, referralCode string, referrerID *int64) (*model.User, error) {
	const insertUser = `
		INSERT INTO users (username, points, referral_code, referred_by, created_at, updated_at)
		VALUES ($1, 0, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns
	const insertReferral = `
		INSERT INTO referrals (referrer_id, referred_id, created_at)
		VALUES ($1, $2, NOW())
	`

	var user *model.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRow(ctx, insertUser, username, referralCode, referrerID))
		if err != nil {
			return err
		}
		if referrerID == nil {
			return nil
		}
		_, err = tx.Exec(ctx, insertReferral, *referrerID, user.ID)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByReferralCode retrieves the owner of a referral code.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}
	return user, nil
}

// IncrementPoints atomically adds delta to the user's points and returns the new total.
func (r *UserRepository) IncrementPoints(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, id, delta).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to increment points: %w", err)
	}
	return total, nil
}

// GetTopUsers retrieves the top N users by points. Ties keep registration order.
func (r *UserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY points DESC, id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
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

// Position returns the user's 1-based leaderboard position, using the same
// ordering as GetTopUsers.
func (r *UserRepository) Position(ctx context.Context, id int64) (int, error) {
	const query = `
		SELECT COUNT(*) + 1
		FROM users u, users me
		WHERE me.id = $1
		  AND (u.points > me.points OR (u.points = me.points AND u.id < me.id))
	`

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUserNotFound
	}

	var position int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to get leaderboard position: %w", err)
	}
	return position, nil
}

// CountUsers returns the number of registered users.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Exists checks if a user with the given ID exists.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// CountReferrals returns how many users registered with this user's code.
func (r *UserRepository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

// ListReferrals returns the users referred by userID, newest first.
func (r *UserRepository) ListReferrals(ctx context.Context, userID int64) ([]model.ReferredUser, error) {
	const query = `
		SELECT r.id, u.id, u.username, u.points, r.created_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.referrer_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	defer rows.Close()

	var referred []model.ReferredUser
	for rows.Next() {
		var ru model.ReferredUser
		if err := rows.Scan(&ru.ReferralID, &ru.UserID, &ru.Username, &ru.Points, &ru.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
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
		SELECT u.id, u.username, u.points, u.referral_code, u.referred_by, u.created_at, u.updated_at
		FROM referrals r
		JOIN users u ON u.id = r.referrer_id
		WHERE r.referred_id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get referrer: %w", err)
	}
	return user, nil
}
