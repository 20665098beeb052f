package service

import (
	"context"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/savings"
)

// SavingsService compares a stated weekly spend with observed refusals.
type SavingsService struct {
	entries   EntryStore
	users     UserStore
	projector *savings.Projector
	calendar  Calendar
}

// NewSavingsService creates a new SavingsService instance.
func NewSavingsService(entries EntryStore, users UserStore, projector *savings.Projector, calendar Calendar) *SavingsService {
	return &SavingsService{
		entries:   entries,
		users:     users,
		projector: projector,
		calendar:  calendar,
	}
}

// Compare projects the user's savings against weeklyBaseline reference units.
func (s *SavingsService) Compare(ctx context.Context, userID int64, weeklyBaseline decimal.Decimal) (*savings.Projection, error) {
	if !weeklyBaseline.IsPositive() {
		return nil, ErrInvalidBaseline
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return nil, err
	}

	samples := make([]savings.Sample, len(entries))
	for i, e := range entries {
		samples[i] = savings.Sample{Amount: e.USDAmount, At: e.CreatedAt}
	}
	return s.projector.Project(weeklyBaseline, samples, s.calendar.now())
}
