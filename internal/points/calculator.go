// Package points derives points earned for an entry and the user's logging streak.
package points

import (
	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// Calculator holds the points formula parameters.
type Calculator struct {
	HabitCategory model.Category
	HabitBonus    decimal.Decimal
	StreakDivisor int64
	StreakCap     decimal.Decimal
}

// Config holds calculator configuration.
type Config struct {
	HabitCategory string
	HabitBonus    float64
	StreakDivisor int
	StreakCap     float64
}

// NewCalculator creates a Calculator. A nil config yields the default formula:
// +20% for habits, streak multiplier 1 + streak/100 capped at 2.
func NewCalculator(cfg *Config) *Calculator {
	c := &Calculator{
		HabitCategory: model.CategoryHabits,
		HabitBonus:    decimal.RequireFromString("1.2"),
		StreakDivisor: 100,
		StreakCap:     decimal.NewFromInt(2),
	}
	if cfg == nil {
		return c
	}
	if cfg.HabitCategory != "" {
		c.HabitCategory = model.Category(cfg.HabitCategory)
	}
	if cfg.HabitBonus > 0 {
		c.HabitBonus = decimal.NewFromFloat(cfg.HabitBonus)
	}
	if cfg.StreakDivisor > 0 {
		c.StreakDivisor = int64(cfg.StreakDivisor)
	}
	if cfg.StreakCap >= 1 {
		c.StreakCap = decimal.NewFromFloat(cfg.StreakCap)
	}
	return c
}

// Calculate returns the points for an entry worth amount reference units,
// rounded to two decimals (half away from zero).
func (c *Calculator) Calculate(amount decimal.Decimal, category model.Category, streak int) decimal.Decimal {
	points := amount
	if c.isHabit(category) {
		points = points.Mul(c.HabitBonus)
	}
	points = points.Mul(c.StreakMultiplier(streak))
	return points.Round(2)
}

// StreakMultiplier returns min(1 + streak/divisor, cap). Negative streaks count as zero.
func (c *Calculator) StreakMultiplier(streak int) decimal.Decimal {
	if streak < 0 {
		streak = 0
	}
	m := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(streak)).Div(decimal.NewFromInt(c.StreakDivisor)))
	return decimal.Min(m, c.StreakCap)
}

func (c *Calculator) isHabit(category model.Category) bool {
	return category == c.HabitCategory
}
