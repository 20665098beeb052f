package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/rank"
	"refusal-tracker/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// Profile is the points view of a user.
type Profile struct {
	User         *model.User     `json:"user"`
	Rank         rank.Tier       `json:"rank"`
	NextRank     *rank.Tier      `json:"nextRank"`
	PointsToNext decimal.Decimal `json:"pointsToNext"`
	Streak       int             `json:"streak"`
	Referrals    int             `json:"referrals"`
}

// UserService registers users and builds profiles.
type UserService struct {
	users    UserStore
	entries  EntryStore
	calendar Calendar
}

// NewUserService creates a new UserService instance.
func NewUserService(users UserStore, entries EntryStore, calendar Calendar) *UserService {
	return &UserService{users: users, entries: entries, calendar: calendar}
}

// Create registers a user. A non-empty referralCode links the new user to
// the code's owner.
func (s *UserService) Create(ctx context.Context, username, referralCode string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	var referrerID *int64
	if code := strings.ToUpper(strings.TrimSpace(referralCode)); code != "" {
		referrer, err := s.users.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrReferralCodeNotFound
			}
			return nil, err
		}
		referrerID = &referrer.ID
	}

	user, err := s.users.Create(ctx, username, NewReferralCode(), referrerID)
	if err != nil {
		return nil, err
	}

	ev := log.Info().Int64("user_id", user.ID).Str("username", user.Username)
	if referrerID != nil {
		ev = ev.Int64("referrer_id", *referrerID)
	}
	ev.Msg("User created")
	return user, nil
}

// Find resolves a user by username.
func (s *UserService) Find(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, strings.TrimSpace(username))
}

// Profile returns the user's points, derived rank, streak and referral count.
func (s *UserService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return nil, err
	}
	referrals, err := s.users.CountReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		User:         user,
		Rank:         rank.For(user.Points),
		PointsToNext: decimal.Zero,
		Streak:       streakOf(entries, s.calendar.loc()),
		Referrals:    referrals,
	}
	if next, needed, ok := rank.Next(user.Points); ok {
		p.NextRank = &next
		p.PointsToNext = needed
	}
	return p, nil
}

// NewReferralCode returns 8 uppercase hex characters from a random UUID.
func NewReferralCode() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
