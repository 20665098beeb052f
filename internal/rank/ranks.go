// Package rank maps cumulative points to named tiers. Ranks are derived on
// read and never stored.
package rank

import "github.com/shopspring/decimal"

// Tier is a named rank with an inclusive lower bound.
type Tier struct {
	Name      string          `json:"name"`
	NameRu    string          `json:"nameRu"`
	MinPoints decimal.Decimal `json:"minPoints"`
	Color     string          `json:"color"`
}

// Tiers are sorted ascending by MinPoints; the first tier starts at 0.
var Tiers = []Tier{
	{Name: "Novice Saver", NameRu: "Новичок", MinPoints: decimal.NewFromInt(0), Color: "#9E9E9E"},
	{Name: "Habit Hacker", NameRu: "Взломщик привычек", MinPoints: decimal.NewFromInt(50), Color: "#4CAF50"},
	{Name: "Frugal Master", NameRu: "Мастер экономии", MinPoints: decimal.NewFromInt(150), Color: "#2196F3"},
	{Name: "Willpower Pro", NameRu: "Профи силы воли", MinPoints: decimal.NewFromInt(300), Color: "#9C27B0"},
	{Name: "Discipline Legend", NameRu: "Легенда дисциплины", MinPoints: decimal.NewFromInt(500), Color: "#FF9800"},
}

// For returns the highest tier whose threshold is at most points.
func For(points decimal.Decimal) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if points.GreaterThanOrEqual(Tiers[i].MinPoints) {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// Next returns the tier after the one points falls into and the points still
// needed to reach it. ok is false at the top tier.
func Next(points decimal.Decimal) (tier Tier, needed decimal.Decimal, ok bool) {
	for _, t := range Tiers {
		if t.MinPoints.GreaterThan(points) {
			return t, t.MinPoints.Sub(points), true
		}
	}
	return Tier{}, decimal.Zero, false
}
