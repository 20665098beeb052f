package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/currency"
	"refusal-tracker/internal/model"
)

// DefaultGoal is a starter goal priced in the reference currency.
type DefaultGoal struct {
	Name      string
	Icon      string
	TargetUSD decimal.Decimal
}

// DefaultGoals returns the starter goals.
func DefaultGoals() []DefaultGoal {
	return []DefaultGoal{
		{Name: "iPhone 17 Pro", Icon: "📱", TargetUSD: decimal.NewFromInt(1199)},
		{Name: "Ray-Ban Aviator Sunglasses", Icon: "🕶️", TargetUSD: decimal.NewFromInt(165)},
		{Name: "AirPods Pro", Icon: "🎧", TargetUSD: decimal.NewFromInt(249)},
		{Name: "Weekend Trip", Icon: "✈️", TargetUSD: decimal.NewFromInt(500)},
	}
}

// NewGoal is the input for creating a goal.
type NewGoal struct {
	UserID       int64
	Name         string
	TargetAmount decimal.Decimal
	Currency     string
}

// GoalProgress is a goal with the share of it already saved.
type GoalProgress struct {
	model.Goal
	// Progress is a percentage in [0, 100].
	Progress decimal.Decimal `json:"progress"`
}

// GoalBoard lists active goals against total savings.
type GoalBoard struct {
	Goals      []GoalProgress  `json:"goals"`
	TotalSaved decimal.Decimal `json:"totalSaved"`
}

// GoalService manages savings goals.
type GoalService struct {
	goals      GoalStore
	entries    EntryStore
	users      UserStore
	normalizer *currency.Normalizer
	calendar   Calendar
}

// NewGoalService creates a new GoalService instance.
func NewGoalService(goals GoalStore, entries EntryStore, users UserStore, normalizer *currency.Normalizer, calendar Calendar) *GoalService {
	return &GoalService{
		goals:      goals,
		entries:    entries,
		users:      users,
		normalizer: normalizer,
		calendar:   calendar,
	}
}

// Create stores an active goal with its reference-currency target.
func (s *GoalService) Create(ctx context.Context, in NewGoal) (*model.Goal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !in.TargetAmount.IsPositive() {
		return nil, ErrInvalidGoal
	}
	code, err := currencyCode(in.Currency)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	return s.goals.Create(ctx, &model.Goal{
		UserID:       in.UserID,
		Name:         name,
		TargetAmount: in.TargetAmount,
		Currency:     code,
		USDTarget:    s.normalizer.Normalize(in.TargetAmount, code).Round(amountPlaces),
		IsActive:     true,
		CreatedAt:    s.calendar.now(),
	})
}

// List returns active goals, newest first, with progress against all savings.
func (s *GoalService) List(ctx context.Context, userID int64) (*GoalBoard, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	goals, err := s.goals.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.USDAmount)
	}

	board := &GoalBoard{Goals: make([]GoalProgress, 0, len(goals)), TotalSaved: total.Round(2)}
	for _, g := range goals {
		board.Goals = append(board.Goals, GoalProgress{Goal: g, Progress: goalProgress(total, g.USDTarget)})
	}
	return board, nil
}

// SeedDefaults creates the starter goals for a user without active goals.
// It returns how many goals were created.
func (s *GoalService) SeedDefaults(ctx context.Context, userID int64, currencyCodeIn string) (int, error) {
	code := s.normalizer.Reference()
	if strings.TrimSpace(currencyCodeIn) != "" {
		var err error
		if code, err = currencyCode(currencyCodeIn); err != nil {
			return 0, err
		}
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.goals.CountActive(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, d := range DefaultGoals() {
		_, err := s.goals.Create(ctx, &model.Goal{
			UserID:       userID,
			Name:         d.Icon + " " + d.Name,
			TargetAmount: s.normalizer.FromReference(d.TargetUSD, code).Round(2),
			Currency:     code,
			USDTarget:    d.TargetUSD,
			IsActive:     true,
			CreatedAt:    s.calendar.now(),
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Count returns the number of active goals.
func (s *GoalService) Count(ctx context.Context, userID int64) (int, error) {
	return s.goals.CountActive(ctx, userID)
}

// goalProgress returns min(100, 100 × saved / target) rounded to 2 decimals.
func goalProgress(saved, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.NewFromInt(100)
	}
	hundred := decimal.NewFromInt(100)
	return decimal.Min(hundred, saved.Mul(hundred).Div(target)).Round(2)
}
