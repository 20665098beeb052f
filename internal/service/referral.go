package service

import (
	"context"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// ReferralRow is one referred user.
type ReferralRow struct {
	model.ReferredUser
	IsActive bool `json:"isActive"`
}

// Referrer identifies who referred the user.
type Referrer struct {
	Username     string `json:"username"`
	ReferralCode string `json:"referralCode"`
}

// ReferralStats summarizes a user's referrals.
type ReferralStats struct {
	Referrals          []ReferralRow   `json:"referrals"`
	TotalReferrals     int             `json:"totalReferrals"`
	ActiveReferrals    int             `json:"activeReferrals"`
	PointsFromReferred decimal.Decimal `json:"totalPointsFromReferrals"`
	ReferralCode       string          `json:"referralCode"`
	ReferredBy         *Referrer       `json:"referrer"`
}

// ReferralService reports referral activity.
type ReferralService struct {
	users UserStore
}

// NewReferralService creates a new ReferralService instance.
func NewReferralService(users UserStore) *ReferralService {
	return &ReferralService{users: users}
}

// Stats returns the user's referrals, newest first. A referred user is active
// once they have earned points.
func (s *ReferralService) Stats(ctx context.Context, userID int64) (*ReferralStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	referred, err := s.users.ListReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{
		Referrals:          make([]ReferralRow, 0, len(referred)),
		TotalReferrals:     len(referred),
		PointsFromReferred: decimal.Zero,
		ReferralCode:       user.ReferralCode,
	}
	for _, r := range referred {
		active := r.Points.IsPositive()
		if active {
			stats.ActiveReferrals++
		}
		stats.PointsFromReferred = stats.PointsFromReferred.Add(r.Points)
		stats.Referrals = append(stats.Referrals, ReferralRow{ReferredUser: r, IsActive: active})
	}

	referrer, err := s.users.GetReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if referrer != nil {
		stats.ReferredBy = &Referrer{Username: referrer.Username, ReferralCode: referrer.ReferralCode}
	}
	return stats, nil
}
