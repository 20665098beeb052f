// Package handler provides the tracker's command line commands.
// Every command writes one JSON document to Dependencies.Out.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/config"
	"refusal-tracker/internal/currency"
	"refusal-tracker/internal/pkg/lock"
	"refusal-tracker/internal/points"
	"refusal-tracker/internal/savings"
	"refusal-tracker/internal/service"
)

// Dependencies holds everything the commands need.
type Dependencies struct {
	Out io.Writer
	In  io.Reader
	// Migrate applies the storage schema.
	Migrate func(ctx context.Context) error

	Normalizer   *currency.Normalizer
	Users        *service.UserService
	Entries      *service.EntryService
	Achievements *service.AchievementService
	Savings      *service.SavingsService
	Tasks        *service.TaskService
	Goals        *service.GoalService
	Presets      *service.PresetService
	Leaderboard  *service.LeaderboardService
	Referrals    *service.ReferralService
}

// NewDependencies wires the services over one backend's stores.
func NewDependencies(cfg *config.Config, stores service.Stores, calendar service.Calendar) *Dependencies {
	normalizer := currency.NewNormalizer(cfg.App.ReferenceCurrency, cfg.Currency.Rates)
	calculator := points.NewCalculator(&points.Config{
		HabitCategory: cfg.Points.HabitCategory,
		HabitBonus:    cfg.Points.HabitBonus,
		StreakDivisor: cfg.Points.StreakDivisor,
		StreakCap:     cfg.Points.StreakCap,
	})
	projector := savings.NewProjector(cfg.Savings.CapRatio, cfg.Savings.FallbackRate)

	achievements := service.NewAchievementService(
		stores.Achievements, stores.Users, stores.Entries, stores.Presets, nil, calendar,
	)

	return &Dependencies{
		Out:          os.Stdout,
		In:           os.Stdin,
		Normalizer:   normalizer,
		Users:        service.NewUserService(stores.Users, stores.Entries, calendar),
		Entries:      service.NewEntryService(stores.Entries, stores.Users, normalizer, calculator, achievements, lock.NewUserLock(), cfg.App.LockTimeout, calendar),
		Achievements: achievements,
		Savings:      service.NewSavingsService(stores.Entries, stores.Users, projector, calendar),
		Tasks:        service.NewTaskService(stores.Tasks, stores.Entries, stores.Users, calendar),
		Goals:        service.NewGoalService(stores.Goals, stores.Entries, stores.Users, normalizer, calendar),
		Presets:      service.NewPresetService(stores.Presets, stores.Users, achievements),
		Leaderboard:  service.NewLeaderboardService(stores.Users),
		Referrals:    service.NewReferralService(stores.Users),
	}
}

// exec runs h through the middleware chain and prints its result.
func (d *Dependencies) exec(ctx context.Context, command string, h HandlerFunc) error {
	h = Chain(h, RecoveryMiddleware(), LoggingMiddleware(command))

	result, err := h(ctx, d)
	if err != nil {
		return err
	}
	return writeJSON(d.Out, result)
}

// userID resolves a username to its id.
func (d *Dependencies) userID(ctx context.Context, username string) (int64, error) {
	user, err := d.Users.Find(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", username, err)
	}
	return user.ID, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ErrInvalidNumber is returned when a numeric flag is not a decimal.
var ErrInvalidNumber = errors.New("invalid number")

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w for --%s: %q", ErrInvalidNumber, flag, s)
	}
	return d, nil
}
