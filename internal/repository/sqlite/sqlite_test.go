package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/achievement"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

// setupTestDB opens a migrated database in a temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "data", "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Migrate(context.Background()))
	assert.FileExists(t, db.Path())
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1237), toCents(dec("12.37")))
	assert.Equal(t, int64(13), toCents(dec("0.125")))
	assert.True(t, fromCents(1237).Equal(dec("12.37")))
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.Create(ctx, "alice", "A1B2C3D4", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Points.IsZero())
	assert.Nil(t, user.ReferredBy)

	_, err = repo.Create(ctx, "alice", "FFFFFFFF", nil)
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func TestUserRepository_Referral(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice, err := repo.Create(ctx, "alice", "AAAAAAAA", nil)
	require.NoError(t, err)
	bob, err := repo.Create(ctx, "bob", "BBBBBBBB", &alice.ID)
	require.NoError(t, err)
	require.NotNil(t, bob.ReferredBy)
	assert.Equal(t, alice.ID, *bob.ReferredBy)

	count, err := repo.CountReferrals(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	referred, err := repo.ListReferrals(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, referred, 1)
	assert.Equal(t, "bob", referred[0].Username)

	referrer, err := repo.GetReferrer(ctx, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, referrer)
	assert.Equal(t, alice.ID, referrer.ID)

	none, err := repo.GetReferrer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	byCode, err := repo.GetByReferralCode(ctx, "BBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byCode.ID)
}

func TestUserRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.IncrementPoints(ctx, 42, dec("1"))
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_LeaderboardOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a, _ := repo.Create(ctx, "a", "AAAAAAAA", nil)
	b, _ := repo.Create(ctx, "b", "BBBBBBBB", nil)
	c, _ := repo.Create(ctx, "c", "CCCCCCCC", nil)

	_, err := repo.IncrementPoints(ctx, a.ID, dec("12.5"))
	require.NoError(t, err)
	_, err = repo.IncrementPoints(ctx, b.ID, dec("40"))
	require.NoError(t, err)
	total, err := repo.IncrementPoints(ctx, c.ID, dec("12.50"))
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("12.5")))

	top, err := repo.GetTopUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{top[0].Username, top[1].Username, top[2].Username})

	pos, err := repo.Position(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
	pos, err = repo.Position(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	_, err = repo.Position(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// ============================================================================
// EntryRepository Tests
// ============================================================================

func TestEntryRepository_CreateWithPoints(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	user, err := users.Create(ctx, "saver", "SSSSSSSS", nil)
	require.NoError(t, err)

	note := "skipped the latte"
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	stored, total, err := repo.CreateWithPoints(ctx, &model.Entry{
		UserID:       user.ID,
		Name:         "Coffee",
		Category:     model.CategoryFood,
		PricePerUnit: dec("4.5"),
		Quantity:     2,
		Currency:     "USD",
		USDRate:      dec("1"),
		USDAmount:    dec("9"),
		Note:         &note,
		CreatedAt:    at,
	}, dec("1.8"))
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.True(t, stored.USDAmount.Equal(dec("9")))
	assert.True(t, stored.NativeAmount().Equal(dec("9")))
	require.NotNil(t, stored.Note)
	assert.Equal(t, note, *stored.Note)
	assert.True(t, stored.CreatedAt.Equal(at))
	assert.True(t, total.Equal(dec("1.8")))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Points.Equal(dec("1.8")))
}

func TestEntryRepository_CreateWithPoints_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	_, _, err := repo.CreateWithPoints(ctx, &model.Entry{
		UserID:       77,
		Name:         "Ghost",
		Category:     model.CategoryOther,
		PricePerUnit: dec("1"),
		Quantity:     1,
		Currency:     "USD",
		USDRate:      dec("1"),
		USDAmount:    dec("1"),
		CreatedAt:    time.Now(),
	}, dec("1"))
	require.Error(t, err)

	entries, err := repo.ListByUser(ctx, 77, model.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryRepository_ListByUser_Range(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	user, err := users.Create(ctx, "ranger", "RRRRRRRR", nil)
	require.NoError(t, err)

	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, _, err := repo.CreateWithPoints(ctx, &model.Entry{
			UserID:       user.ID,
			Name:         "Snack",
			Category:     model.CategoryFood,
			PricePerUnit: dec("2"),
			Quantity:     1,
			Currency:     "USD",
			USDRate:      dec("1"),
			USDAmount:    dec("2"),
			CreatedAt:    base.AddDate(0, 0, i),
		}, dec("0.4"))
		require.NoError(t, err)
	}

	all, err := repo.ListByUser(ctx, user.ID, model.DateRange{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	ranged, err := repo.ListByUser(ctx, user.ID, model.DateRange{From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.True(t, ranged[0].CreatedAt.Equal(base.AddDate(0, 0, 1)))
}

// ============================================================================
// AchievementRepository Tests
// ============================================================================

func TestAchievementRepository_SeedAndGrant(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	catalog := achievement.Catalog()
	n, err := repo.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), n)

	n, err = repo.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(catalog))
	assert.Equal(t, catalog[0].Code, all[0].Code)

	_, err = repo.FindByCode(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrAchievementNotFound)

	a, err := repo.FindByCode(ctx, achievement.CodeBudgetNinja)
	require.NoError(t, err)

	user, err := users.Create(ctx, "hunter", "HHHHHHHH", nil)
	require.NoError(t, err)

	has, err := repo.HasUnlocked(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, has)

	granted, err := repo.Grant(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.Grant(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, granted)

	has, err = repo.HasUnlocked(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, has)

	unlocks, err := repo.ListUnlocked(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, a.ID, unlocks[0].AchievementID)
}

// ============================================================================
// PresetRepository Tests
// ============================================================================

func TestPresetRepository_ReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewPresetRepository(db)
	ctx := context.Background()

	user, err := users.Create(ctx, "presetter", "PPPPPPPP", nil)
	require.NoError(t, err)

	empty, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	err = repo.ReplaceAll(ctx, user.ID, []model.Preset{
		{Icon: "☕", Name: "Coffee", Price: dec("5"), Category: model.CategoryFood, Tags: []model.WhyTag{model.TagUnhealthy, model.TagExpensive}},
		{Icon: "🚬", Name: "Cigarettes", Price: dec("12.5"), Category: model.CategoryHabits},
	})
	require.NoError(t, err)

	presets, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, 0, presets[0].Position)
	assert.Equal(t, "Coffee", presets[0].Name)
	assert.Equal(t, []model.WhyTag{model.TagUnhealthy, model.TagExpensive}, presets[0].Tags)
	assert.Empty(t, presets[1].Tags)
	assert.True(t, presets[1].Price.Equal(dec("12.5")))

	require.NoError(t, repo.ReplaceAll(ctx, user.ID, []model.Preset{
		{Name: "Taxi", Price: dec("20"), Category: model.CategoryOther},
	}))
	presets, err = repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Taxi", presets[0].Name)

	require.NoError(t, repo.DeleteAll(ctx, user.ID))
	presets, err = repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, presets)
}

// ============================================================================
// GoalRepository Tests
// ============================================================================

func TestGoalRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewGoalRepository(db)
	ctx := context.Background()

	user, err := users.Create(ctx, "dreamer", "DDDDDDDD", nil)
	require.NoError(t, err)

	goal, err := repo.Create(ctx, &model.Goal{
		UserID:       user.ID,
		Name:         "🎧 AirPods Pro",
		TargetAmount: dec("249"),
		Currency:     "USD",
		USDTarget:    dec("249"),
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	assert.NotZero(t, goal.ID)
	assert.True(t, goal.IsActive)

	goals, err := repo.ListActive(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].USDTarget.Equal(dec("249")))

	count, err := repo.CountActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// ============================================================================
// TaskRepository Tests
// ============================================================================

func TestTaskRepository_CompleteWithPoints(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user, err := users.Create(ctx, "tasker", "TTTTTTTT", nil)
	require.NoError(t, err)

	completion := &model.TaskCompletion{
		UserID:       user.ID,
		TaskCode:     "monday_starter",
		Day:          "2026-10-12",
		PointsEarned: dec("15"),
		CompletedAt:  time.Now(),
	}
	total, err := repo.CompleteWithPoints(ctx, completion)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("15")))

	_, err = repo.CompleteWithPoints(ctx, completion)
	assert.ErrorIs(t, err, repository.ErrAlreadyCompleted)

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Points.Equal(dec("15")))

	done, err := repo.ListCompleted(ctx, user.ID, "2026-10-12")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "monday_starter", done[0].TaskCode)

	other, err := repo.ListCompleted(ctx, user.ID, "2026-10-13")
	require.NoError(t, err)
	assert.Empty(t, other)
}
