package service

import (
	"context"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/rank"
)

// DefaultLeaderboardSize is the number of users shown when no limit is given.
const DefaultLeaderboardSize = 50

// LeaderboardRow is one leaderboard line.
type LeaderboardRow struct {
	Position int             `json:"position"`
	UserID   int64           `json:"userId"`
	Username string          `json:"username"`
	Points   decimal.Decimal `json:"points"`
	Rank     rank.Tier       `json:"rank"`
}

// Leaderboard is the top of the board plus the caller's position.
type Leaderboard struct {
	Rows []LeaderboardRow `json:"leaderboard"`
	// UserPosition is 0 when no caller was given.
	UserPosition int `json:"userPosition"`
	TotalUsers   int `json:"totalUsers"`
}

// LeaderboardService ranks users by points.
type LeaderboardService struct {
	users UserStore
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(users UserStore) *LeaderboardService {
	return &LeaderboardService{users: users}
}

// Top returns the first limit users. A userID of 0 skips the caller lookup.
func (s *LeaderboardService) Top(ctx context.Context, userID int64, limit int) (*Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	users, err := s.users.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{Rows: make([]LeaderboardRow, 0, len(users)), TotalUsers: total}
	for i, u := range users {
		board.Rows = append(board.Rows, LeaderboardRow{
			Position: i + 1,
			UserID:   u.ID,
			Username: u.Username,
			Points:   u.Points,
			Rank:     rank.For(u.Points),
		})
	}

	if userID != 0 {
		board.UserPosition, err = s.users.Position(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return board, nil
}
