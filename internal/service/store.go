// Package service orchestrates the refusal pipeline and the views built on it.
// Services depend on the store interfaces below; both the PostgreSQL and the
// SQLite repositories satisfy them.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// UserStore persists users, points and referral links.
type UserStore interface {
	Create(ctx context.Context, username, referralCode string, referrerID *int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByReferralCode(ctx context.Context, code string) (*model.User, error)
	IncrementPoints(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)
	Position(ctx context.Context, id int64) (int, error)
	CountUsers(ctx context.Context) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ReferralStore
}

// ReferralStore reads referral links.
type ReferralStore interface {
	CountReferrals(ctx context.Context, userID int64) (int, error)
	ListReferrals(ctx context.Context, userID int64) ([]model.ReferredUser, error)
	GetReferrer(ctx context.Context, userID int64) (*model.User, error)
}

// EntryStore persists entries. CreateWithPoints must insert the entry and
// apply the point delta atomically.
type EntryStore interface {
	CreateWithPoints(ctx context.Context, e *model.Entry, points decimal.Decimal) (*model.Entry, decimal.Decimal, error)
	ListByUser(ctx context.Context, userID int64, rng model.DateRange) ([]model.Entry, error)
}

// AchievementStore persists the catalog and unlocks. Grant is insert-if-absent.
type AchievementStore interface {
	Seed(ctx context.Context, catalog []model.Achievement) (int, error)
	FindByCode(ctx context.Context, code string) (*model.Achievement, error)
	ListAll(ctx context.Context) ([]model.Achievement, error)
	HasUnlocked(ctx context.Context, userID, achievementID int64) (bool, error)
	Grant(ctx context.Context, userID, achievementID int64) (bool, error)
	ListUnlocked(ctx context.Context, userID int64) ([]model.UserAchievement, error)
}

// PresetStore persists user presets.
type PresetStore interface {
	List(ctx context.Context, userID int64) ([]model.Preset, error)
	ReplaceAll(ctx context.Context, userID int64, presets []model.Preset) error
	DeleteAll(ctx context.Context, userID int64) error
}

// GoalStore persists savings goals.
type GoalStore interface {
	Create(ctx context.Context, g *model.Goal) (*model.Goal, error)
	ListActive(ctx context.Context, userID int64) ([]model.Goal, error)
	CountActive(ctx context.Context, userID int64) (int, error)
}

// TaskStore persists daily task completions. CompleteWithPoints must record
// the completion and apply the point delta atomically.
type TaskStore interface {
	ListCompleted(ctx context.Context, userID int64, day string) ([]model.TaskCompletion, error)
	CompleteWithPoints(ctx context.Context, c *model.TaskCompletion) (decimal.Decimal, error)
}

// Stores bundles one backend's repositories.
type Stores struct {
	Users        UserStore
	Entries      EntryStore
	Achievements AchievementStore
	Presets      PresetStore
	Goals        GoalStore
	Tasks        TaskStore
}

// Calendar supplies the current time and the timezone calendar days are counted in.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

// NewCalendar returns a Calendar on the wall clock. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// startOfDay returns midnight of t's calendar day in the calendar's zone.
func (c Calendar) startOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// today returns the bounds of the current calendar day.
func (c Calendar) today() model.DateRange {
	start := c.startOfDay(c.now())
	return model.DateRange{From: start, To: start.AddDate(0, 0, 1)}
}
