// Package savings estimates weekly savings from logged refusals and
// extrapolates them linearly over longer horizons.
package savings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidBaseline is returned when the weekly baseline is not positive.
var ErrInvalidBaseline = errors.New("weekly baseline must be positive")

var (
	daysPerWeek = decimal.NewFromInt(7)
	daysPerYear = decimal.RequireFromString("365.25")
	hundred     = decimal.NewFromInt(100)
)

// Sample is one entry's reference amount and creation time.
type Sample struct {
	Amount decimal.Decimal
	At     time.Time
}

// Horizons holds linear extrapolations of the weekly savings.
type Horizons struct {
	Week       decimal.Decimal `json:"week"`
	Month      decimal.Decimal `json:"month"`
	SixMonths  decimal.Decimal `json:"sixMonths"`
	Year       decimal.Decimal `json:"year"`
	ThreeYears decimal.Decimal `json:"threeYears"`
	FiveYears  decimal.Decimal `json:"fiveYears"`
}

// WalletStats describes the history the projection was derived from.
type WalletStats struct {
	TotalSaved   decimal.Decimal `json:"totalSaved"`
	DaysTracking int             `json:"daysTracking"`
	DailyAverage decimal.Decimal `json:"dailyAverage"`
	EntriesCount int             `json:"entriesCount"`
	HasData      bool            `json:"hasData"`
}

// Projection is the result of Project. Amounts are rounded to two decimals.
type Projection struct {
	WeeklyBefore      decimal.Decimal `json:"weeklyBefore"`
	WeeklyAfter       decimal.Decimal `json:"weeklyAfter"`
	WeeklySavings     decimal.Decimal `json:"weeklySavings"`
	SavingsPercentage decimal.Decimal `json:"savingsPercentage"`
	Projections       Horizons        `json:"projections"`
	WalletStats       WalletStats     `json:"walletStats"`
}

// Projector computes savings projections.
type Projector struct {
	// CapRatio bounds weekly savings to this share of the baseline.
	CapRatio decimal.Decimal
	// FallbackRate is the assumed savings share when there is no history.
	FallbackRate decimal.Decimal
}

// NewProjector creates a Projector. Out-of-range values fall back to 0.95 and 0.3.
func NewProjector(capRatio, fallbackRate float64) *Projector {
	p := &Projector{
		CapRatio:     decimal.RequireFromString("0.95"),
		FallbackRate: decimal.RequireFromString("0.3"),
	}
	if capRatio > 0 && capRatio <= 1 {
		p.CapRatio = decimal.NewFromFloat(capRatio)
	}
	if fallbackRate >= 0 && fallbackRate <= 1 {
		p.FallbackRate = decimal.NewFromFloat(fallbackRate)
	}
	return p
}

// Project estimates savings for a weekly baseline given the user's history.
func (p *Projector) Project(baseline decimal.Decimal, samples []Sample, now time.Time) (*Projection, error) {
	if !baseline.IsPositive() {
		return nil, ErrInvalidBaseline
	}

	var (
		weekly = baseline.Mul(p.FallbackRate)
		stats  = WalletStats{TotalSaved: decimal.Zero, DailyAverage: decimal.Zero, EntriesCount: len(samples)}
	)

	if len(samples) > 0 {
		first := samples[0].At
		total := decimal.Zero
		for _, s := range samples {
			total = total.Add(s.Amount)
			if s.At.Before(first) {
				first = s.At
			}
		}
		days := decimal.NewFromInt(int64(daysTracking(first, now)))
		daily := total.Div(days)

		weekly = decimal.Min(total.Mul(daysPerWeek).Div(days), baseline.Mul(p.CapRatio))
		stats = WalletStats{
			TotalSaved:   total.Round(2),
			DaysTracking: int(days.IntPart()),
			DailyAverage: daily.Round(2),
			EntriesCount: len(samples),
			HasData:      true,
		}
	}

	after := decimal.Max(baseline.Sub(weekly), decimal.Zero)
	yearly := weekly.Mul(daysPerYear).Div(daysPerWeek)

	return &Projection{
		WeeklyBefore:      baseline.Round(2),
		WeeklyAfter:       after.Round(2),
		WeeklySavings:     weekly.Round(2),
		SavingsPercentage: weekly.Mul(hundred).Div(baseline).Round(2),
		Projections: Horizons{
			Week:       weekly.Round(2),
			Month:      weekly.Mul(daysPerYear).Div(decimal.NewFromInt(12 * 7)).Round(2),
			SixMonths:  weekly.Mul(daysPerYear).Div(decimal.NewFromInt(2 * 7)).Round(2),
			Year:       yearly.Round(2),
			ThreeYears: yearly.Mul(decimal.NewFromInt(3)).Round(2),
			FiveYears:  yearly.Mul(decimal.NewFromInt(5)).Round(2),
		},
		WalletStats: stats,
	}, nil
}

// daysTracking is the number of started days since first, at least 1.
func daysTracking(first, now time.Time) int {
	elapsed := now.Sub(first)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
