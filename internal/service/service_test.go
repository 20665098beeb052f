package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/currency"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/pkg/lock"
	"refusal-tracker/internal/points"
	"refusal-tracker/internal/repository/sqlite"
	"refusal-tracker/internal/savings"
)

// monday is 2026-03-09 12:00 UTC.
var monday = time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)

// clock is a settable time source.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// env wires every service over one temporary SQLite database.
type env struct {
	stores       Stores
	clock        *clock
	calendar     Calendar
	normalizer   *currency.Normalizer
	achievements *AchievementService
	entries      *EntryService
	savings      *SavingsService
	tasks        *TaskService
	goals        *GoalService
	leaderboard  *LeaderboardService
	referrals    *ReferralService
	presets      *PresetService
	users        *UserService
}

func sqliteStores(t *testing.T) Stores {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	return Stores{
		Users:        sqlite.NewUserRepository(db),
		Entries:      sqlite.NewEntryRepository(db),
		Achievements: sqlite.NewAchievementRepository(db),
		Presets:      sqlite.NewPresetRepository(db),
		Goals:        sqlite.NewGoalRepository(db),
		Tasks:        sqlite.NewTaskRepository(db),
	}
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, sqliteStores(t))
}

func newEnvWith(t *testing.T, stores Stores) *env {
	t.Helper()

	e := &env{stores: stores, clock: &clock{t: monday}}
	e.calendar = Calendar{Location: time.UTC, Now: e.clock.now}
	e.normalizer = currency.NewNormalizer(currency.Reference, nil)

	e.achievements = NewAchievementService(stores.Achievements, stores.Users, stores.Entries, stores.Presets, nil, e.calendar)
	_, err := e.achievements.Seed(context.Background())
	require.NoError(t, err)

	e.entries = NewEntryService(stores.Entries, stores.Users, e.normalizer, points.NewCalculator(nil),
		e.achievements, lock.NewUserLock(), time.Second, e.calendar)
	e.savings = NewSavingsService(stores.Entries, stores.Users, savings.NewProjector(0.95, 0.3), e.calendar)
	e.tasks = NewTaskService(stores.Tasks, stores.Entries, stores.Users, e.calendar)
	e.goals = NewGoalService(stores.Goals, stores.Entries, stores.Users, e.normalizer, e.calendar)
	e.leaderboard = NewLeaderboardService(stores.Users)
	e.referrals = NewReferralService(stores.Users)
	e.presets = NewPresetService(stores.Presets, stores.Users, e.achievements)
	e.users = NewUserService(stores.Users, stores.Entries, e.calendar)
	return e
}

func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), name, "")
	require.NoError(t, err)
	return u
}

func (e *env) log(t *testing.T, userID int64, name, price, category string) *EntryResult {
	t.Helper()
	res, err := e.entries.Create(context.Background(), NewEntry{
		UserID:       userID,
		Name:         name,
		PricePerUnit: dec(price),
		Category:     category,
		Currency:     "USD",
	})
	require.NoError(t, err)
	return res
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
