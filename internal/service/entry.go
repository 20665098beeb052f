package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"refusal-tracker/internal/currency"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/pkg/lock"
	"refusal-tracker/internal/points"
)

// Stored precision of normalized amounts and rates.
const (
	amountPlaces = 6
	ratePlaces   = 10
)

// NewEntry is the input for logging one refusal.
type NewEntry struct {
	UserID       int64
	Name         string
	PricePerUnit decimal.Decimal
	// Quantity defaults to 1 when zero.
	Quantity int
	Category string
	Currency string
	Note     string
}

// EntryResult is the outcome of a logged entry.
type EntryResult struct {
	Entry           *model.Entry    `json:"entry"`
	PointsEarned    decimal.Decimal `json:"pointsEarned"`
	TotalPoints     decimal.Decimal `json:"totalPoints"`
	Streak          int             `json:"streak"`
	NewAchievements []string        `json:"newAchievements"`
}

// Period selects a window of entries.
type Period string

// Entry list periods.
const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// EntryList is a window of entries with its reference-currency total.
type EntryList struct {
	Period   Period          `json:"period"`
	Entries  []model.Entry   `json:"entries"`
	Count    int             `json:"count"`
	TotalUSD decimal.Decimal `json:"totalUsd"`
}

// EntryService runs the entry pipeline: validate, normalize, score, persist, evaluate.
type EntryService struct {
	entries      EntryStore
	users        UserStore
	normalizer   *currency.Normalizer
	calculator   *points.Calculator
	achievements *AchievementService
	userLock     *lock.UserLock
	lockTimeout  time.Duration
	calendar     Calendar
}

// NewEntryService creates a new EntryService instance.
func NewEntryService(
	entries EntryStore,
	users UserStore,
	normalizer *currency.Normalizer,
	calculator *points.Calculator,
	achievements *AchievementService,
	userLock *lock.UserLock,
	lockTimeout time.Duration,
	calendar Calendar,
) *EntryService {
	if userLock == nil {
		userLock = lock.NewUserLock()
	}
	return &EntryService{
		entries:      entries,
		users:        users,
		normalizer:   normalizer,
		calculator:   calculator,
		achievements: achievements,
		userLock:     userLock,
		lockTimeout:  lockTimeout,
		calendar:     calendar,
	}
}

// Create logs an entry. Points are scored with the streak as it stood before
// this entry. The entry and its point increment commit together; the
// achievement check that follows is best-effort.
func (s *EntryService) Create(ctx context.Context, in NewEntry) (*EntryResult, error) {
	entry, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	if s.userLock.IsLocked(in.UserID) {
		log.Debug().Int64("user_id", in.UserID).Msg("Waiting for user lock")
	}

	var result *EntryResult
	err = s.userLock.WithLock(ctx, in.UserID, s.lockTimeout, func() error {
		var err error
		result, err = s.create(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EntryService) create(ctx context.Context, entry *model.Entry) (*EntryResult, error) {
	history, err := s.entries.ListByUser(ctx, entry.UserID, model.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to load entry history: %w", err)
	}
	streak := streakOf(history, s.calendar.loc())

	if !s.normalizer.Known(entry.Currency) && entry.Currency != s.normalizer.Reference() {
		log.Warn().Str("currency", entry.Currency).Msg("Unknown currency, treating as reference")
	}
	native := entry.NativeAmount()
	entry.USDAmount = s.normalizer.Normalize(native, entry.Currency).Round(amountPlaces)
	entry.USDRate = entry.USDAmount.DivRound(native, ratePlaces)
	entry.CreatedAt = s.calendar.now()

	earned := s.calculator.Calculate(entry.USDAmount, entry.Category, streak)

	stored, total, err := s.entries.CreateWithPoints(ctx, entry, earned)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", stored.UserID).
		Int64("entry_id", stored.ID).
		Str("currency", stored.Currency).
		Str("points", earned.String()).
		Int("streak", streak).
		Msg("Entry created")

	result := &EntryResult{
		Entry:           stored,
		PointsEarned:    earned,
		TotalPoints:     total,
		Streak:          streak,
		NewAchievements: []string{},
	}

	if s.achievements != nil {
		codes, err := s.achievements.Check(ctx, stored.UserID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", stored.UserID).Msg("Achievement check after entry failed")
		}
		if len(codes) > 0 {
			result.NewAchievements = codes
		}
	}
	return result, nil
}

func (s *EntryService) validate(in NewEntry) (*model.Entry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !in.PricePerUnit.IsPositive() {
		return nil, ErrInvalidAmount
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	category, ok := model.ParseCategory(in.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	code, err := currencyCode(in.Currency)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		UserID:       in.UserID,
		Name:         name,
		Category:     category,
		PricePerUnit: in.PricePerUnit,
		Quantity:     quantity,
		Currency:     code,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		entry.Note = &note
	}
	return entry, nil
}

// List returns the user's entries for period, newest first.
func (s *EntryService) List(ctx context.Context, userID int64, period Period) (*EntryList, error) {
	rng, err := s.periodRange(period)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByUser(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	list := &EntryList{Period: period, Entries: entries, Count: len(entries), TotalUSD: decimal.Zero}
	if list.Entries == nil {
		list.Entries = []model.Entry{}
	}
	for _, e := range entries {
		list.TotalUSD = list.TotalUSD.Add(e.USDAmount)
	}
	list.TotalUSD = list.TotalUSD.Round(2)
	return list, nil
}

// Streak returns the user's current logging streak.
func (s *EntryService) Streak(ctx context.Context, userID int64) (int, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	entries, err := s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return 0, err
	}
	return streakOf(entries, s.calendar.loc()), nil
}

// periodRange maps a period to its date range. Weeks start on Sunday.
func (s *EntryService) periodRange(period Period) (model.DateRange, error) {
	today := s.calendar.startOfDay(s.calendar.now())
	switch period {
	case PeriodToday:
		return model.DateRange{From: today}, nil
	case PeriodWeek:
		return model.DateRange{From: today.AddDate(0, 0, -int(today.Weekday()))}, nil
	case PeriodMonth:
		return model.DateRange{From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())}, nil
	case PeriodAll, "":
		return model.DateRange{}, nil
	default:
		return model.DateRange{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

// currencyCode normalizes a currency code and checks its shape.
func currencyCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}
