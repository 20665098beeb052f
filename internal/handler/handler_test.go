package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/config"
	"refusal-tracker/internal/repository"
	"refusal-tracker/internal/repository/sqlite"
	"refusal-tracker/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverSQLite},
		App:     config.AppConfig{Timezone: "UTC", ReferenceCurrency: "USD", LockTimeout: time.Second},
		Points:  config.PointsConfig{HabitCategory: "habits", HabitBonus: 1.2, StreakDivisor: 100, StreakCap: 2},
		Savings: config.SavingsConfig{CapRatio: 0.95, FallbackRate: 0.3},
	}
}

type harness struct {
	deps *Dependencies
	out  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	sdb, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sdb.Close() })

	stores := service.Stores{
		Users:        sqlite.NewUserRepository(sdb),
		Entries:      sqlite.NewEntryRepository(sdb),
		Achievements: sqlite.NewAchievementRepository(sdb),
		Presets:      sqlite.NewPresetRepository(sdb),
		Goals:        sqlite.NewGoalRepository(sdb),
		Tasks:        sqlite.NewTaskRepository(sdb),
	}
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	calendar := service.Calendar{Location: time.UTC, Now: func() time.Time { return now }}

	h := &harness{out: &bytes.Buffer{}}
	h.deps = NewDependencies(testConfig(), stores, calendar)
	h.deps.Out = h.out
	h.deps.Migrate = sdb.Migrate

	h.run(t, "migrate")
	return h
}

// run executes args and decodes the printed document.
func (h *harness) run(t *testing.T, args ...string) map[string]any {
	t.Helper()
	doc, err := h.exec(t, args...)
	require.NoError(t, err)
	return doc
}

func (h *harness) exec(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	h.out.Reset()

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("tracker"), kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	kctx.BindTo(context.Background(), (*context.Context)(nil))
	if err := kctx.Run(h.deps); err != nil {
		return nil, err
	}

	var doc map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &doc), h.out.String())
	return doc, nil
}

func TestMigrateCommand(t *testing.T) {
	h := newHarness(t)

	doc := h.run(t, "migrate")
	assert.Equal(t, "ok", doc["status"])
	assert.Equal(t, float64(0), doc["achievementsSeeded"])
}

func TestEntryAdd_PrintsPoints(t *testing.T) {
	h := newHarness(t)
	h.run(t, "user", "create", "alice")

	doc := h.run(t, "entry", "add", "-u", "alice", "--name", "Cigarettes", "--price", "40", "--category", "habits")
	assert.Equal(t, "48", doc["pointsEarned"])
	assert.Equal(t, "48", doc["totalPoints"])
	assert.Contains(t, doc["newAchievements"], "budget_ninja")

	doc = h.run(t, "user", "show", "-u", "alice")
	rank := doc["rank"].(map[string]any)
	assert.Equal(t, "Novice Saver", rank["name"])
	assert.Equal(t, float64(1), doc["streak"])

	doc = h.run(t, "entry", "list", "-u", "alice", "--period", "today")
	assert.Equal(t, float64(1), doc["count"])
}

func TestEntryAdd_Errors(t *testing.T) {
	h := newHarness(t)
	h.run(t, "user", "create", "alice")

	_, err := h.exec(t, "entry", "add", "-u", "bob", "--name", "Coffee", "--price", "5")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = h.exec(t, "entry", "add", "-u", "alice", "--name", "Coffee", "--price", "five")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = h.exec(t, "entry", "add", "-u", "alice", "--name", "Coffee", "--price", "5", "--category", "cars")
	assert.ErrorIs(t, err, service.ErrInvalidCategory)
	assert.Empty(t, h.out.String())
}

func TestCompareCommand(t *testing.T) {
	h := newHarness(t)
	h.run(t, "user", "create", "alice")

	doc := h.run(t, "compare", "-u", "alice", "--weekly", "100")
	assert.Equal(t, "30", doc["weeklySavings"])
	stats := doc["walletStats"].(map[string]any)
	assert.Equal(t, false, stats["hasData"])

	_, err := h.exec(t, "compare", "-u", "alice", "--weekly", "0")
	assert.ErrorIs(t, err, service.ErrInvalidBaseline)
}

func TestPresetsSet_FromFile(t *testing.T) {
	h := newHarness(t)
	h.run(t, "user", "create", "alice")

	path := filepath.Join(t.TempDir(), "presets.json")
	body := `[{"name":"Chips","price":"2.5","category":"food","tags":["unhealthy"]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	doc := h.run(t, "presets", "set", "-u", "alice", path)
	assert.Equal(t, []any{"reason_seeker"}, doc["newAchievements"])

	doc = h.run(t, "presets", "list", "-u", "alice")
	assert.Equal(t, false, doc["isDefault"])

	h.deps.In = strings.NewReader(`[{"name":"Tea","price":"1","category":"drinks","tags":["bogus"]}]`)
	_, err := h.exec(t, "presets", "set", "-u", "alice", "--", "-")
	assert.ErrorIs(t, err, service.ErrInvalidTag)
}

func TestLeaderboardAndReferrals(t *testing.T) {
	h := newHarness(t)
	alice := h.run(t, "user", "create", "alice")
	h.run(t, "user", "create", "bob", "--ref", alice["referralCode"].(string))
	h.run(t, "entry", "add", "-u", "bob", "--name", "Lunch", "--price", "10", "--category", "food")

	doc := h.run(t, "leaderboard", "-u", "alice")
	rows := doc["leaderboard"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].(map[string]any)["username"])
	assert.Equal(t, float64(2), doc["userPosition"])

	doc = h.run(t, "referrals", "-u", "alice")
	assert.Equal(t, float64(1), doc["totalReferrals"])
	assert.Equal(t, float64(1), doc["activeReferrals"])
}

func TestTasksAndGoals(t *testing.T) {
	h := newHarness(t)
	h.run(t, "user", "create", "alice")

	doc := h.run(t, "tasks", "list", "-u", "alice")
	assert.Equal(t, "Monday", doc["weekday"])
	assert.Len(t, doc["tasks"], 3)

	_, err := h.exec(t, "tasks", "complete", "-u", "alice", "monday_3_entries")
	assert.ErrorIs(t, err, service.ErrTaskNotCompleted)

	doc = h.run(t, "goals", "seed", "-u", "alice")
	assert.Equal(t, float64(4), doc["created"])

	doc = h.run(t, "goals", "add", "-u", "alice", "--name", "Bike", "--target", "300")
	assert.Equal(t, "Bike", doc["name"])

	doc = h.run(t, "goals", "list", "-u", "alice")
	assert.Len(t, doc["goals"], 5)
}

func TestCurrenciesCommand(t *testing.T) {
	h := newHarness(t)

	doc := h.run(t, "currencies")
	assert.Equal(t, "USD", doc["reference"])
	rates := doc["rates"].(map[string]any)
	assert.Equal(t, "1", rates["USD"])
	assert.Equal(t, "0.92", rates["EUR"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h := Chain(func(context.Context, *Dependencies) (any, error) {
		panic("boom")
	}, RecoveryMiddleware(), LoggingMiddleware("test"))

	result, err := h(context.Background(), &Dependencies{})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	want := errors.New("failed")
	h := Chain(func(context.Context, *Dependencies) (any, error) {
		return "partial", want
	}, LoggingMiddleware("test"))

	result, err := h(context.Background(), &Dependencies{})
	assert.Equal(t, "partial", result)
	assert.ErrorIs(t, err, want)
}
