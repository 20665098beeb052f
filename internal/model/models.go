// Package model defines the data models for the refusal tracker.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the points view of an account. Rank is never stored; it is derived
// from Points on read.
type User struct {
	ID           int64           `db:"id" json:"id"`
	Username     string          `db:"username" json:"username"`
	Points       decimal.Decimal `db:"points" json:"points"`
	ReferralCode string          `db:"referral_code" json:"referralCode"`
	ReferredBy   *int64          `db:"referred_by" json:"referredBy,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Entry is one logged refusal. Amounts are kept in the native currency and in
// the reference currency.
type Entry struct {
	ID           int64           `db:"id" json:"id"`
	UserID       int64           `db:"user_id" json:"userId"`
	Name         string          `db:"name" json:"name"`
	Category     Category        `db:"category" json:"category"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Currency     string          `db:"currency" json:"currency"`
	USDRate      decimal.Decimal `db:"usd_rate" json:"usdRate"`
	USDAmount    decimal.Decimal `db:"usd_amount" json:"usdAmount"`
	Note         *string         `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// NativeAmount returns price per unit times quantity.
func (e *Entry) NativeAmount() decimal.Decimal {
	return e.PricePerUnit.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Achievement is a statically defined unlockable.
type Achievement struct {
	ID            int64     `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	NameEn        string    `db:"name_en" json:"nameEn"`
	NameRu        string    `db:"name_ru" json:"nameRu"`
	DescriptionEn string    `db:"description_en" json:"descriptionEn"`
	DescriptionRu string    `db:"description_ru" json:"descriptionRu"`
	Icon          string    `db:"icon" json:"icon"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// UserAchievement records an unlock. At most one exists per (user, achievement).
type UserAchievement struct {
	UserID        int64     `db:"user_id" json:"userId"`
	AchievementID int64     `db:"achievement_id" json:"achievementId"`
	UnlockedAt    time.Time `db:"unlocked_at" json:"unlockedAt"`
}

// AchievementStatus is an achievement annotated with the user's unlock state.
type AchievementStatus struct {
	Achievement
	IsUnlocked bool       `json:"isUnlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"`
}

// Preset is a user-defined quick-entry template.
type Preset struct {
	ID       int64           `db:"id" json:"id"`
	UserID   int64           `db:"user_id" json:"userId"`
	Position int             `db:"position" json:"position"`
	Icon     string          `db:"icon" json:"icon"`
	Name     string          `db:"name" json:"name"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Category Category        `db:"category" json:"category"`
	Tags     []WhyTag        `db:"tags" json:"tags"`
}

// Referral links a referrer to a user who registered with their code.
type Referral struct {
	ID         int64     `db:"id" json:"id"`
	ReferrerID int64     `db:"referrer_id" json:"referrerId"`
	ReferredID int64     `db:"referred_id" json:"referredId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ReferredUser is a referral joined with the referred user's public fields.
type ReferredUser struct {
	ReferralID int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Username   string          `json:"username"`
	Points     decimal.Decimal `json:"points"`
	JoinedAt   time.Time       `json:"joinedAt"`
}

// Goal is a savings target expressed in a native currency and in the reference currency.
type Goal struct {
	ID           int64           `db:"id" json:"id"`
	UserID       int64           `db:"user_id" json:"userId"`
	Name         string          `db:"name" json:"name"`
	TargetAmount decimal.Decimal `db:"target_amount" json:"targetAmount"`
	Currency     string          `db:"currency" json:"currency"`
	USDTarget    decimal.Decimal `db:"usd_target" json:"usdTarget"`
	IsActive     bool            `db:"is_active" json:"isActive"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// TaskCompletion records that a user claimed a daily task on a given day.
type TaskCompletion struct {
	UserID       int64           `db:"user_id" json:"userId"`
	TaskCode     string          `db:"task_code" json:"taskCode"`
	Day          string          `db:"day" json:"day"`
	PointsEarned decimal.Decimal `db:"points_earned" json:"pointsEarned"`
	CompletedAt  time.Time       `db:"completed_at" json:"completedAt"`
}

// DateRange bounds an entry query; zero values leave that side open.
// From is inclusive and To is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// DayKey formats the calendar day of t in loc, used as the per-day uniqueness key.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
