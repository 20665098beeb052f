package model

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Category is the enumerated entry category.
type Category string

// Entry categories.
const (
	CategoryHabits        Category = "habits"
	CategoryFood          Category = "food"
	CategoryDrinks        Category = "drinks"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Categories returns the categories in display order.
func Categories() []Category {
	return []Category{
		CategoryHabits,
		CategoryFood,
		CategoryDrinks,
		CategoryEntertainment,
		CategoryShopping,
		CategoryOther,
	}
}

// categoryAliases maps labels sent verbatim by older clients.
var categoryAliases = map[string]Category{
	"привычки": CategoryHabits,
}

// ParseCategory case-folds s and reports whether it names a known category
// or one of its aliases.
func ParseCategory(s string) (Category, bool) {
	folded := cases.Fold().String(strings.TrimSpace(s))
	if c, ok := categoryAliases[folded]; ok {
		return c, true
	}
	c := Category(folded)
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// WhyTag is a qualitative label attached to a preset.
type WhyTag string

// Why tags. The identifiers are persisted and keep their camelCase spelling.
const (
	TagHarmful     WhyTag = "harmful"
	TagExpensive   WhyTag = "expensive"
	TagUseless     WhyTag = "useless"
	TagUnhealthy   WhyTag = "unhealthy"
	TagAddictive   WhyTag = "addictive"
	TagWasteful    WhyTag = "wasteful"
	TagBadHabit    WhyTag = "badHabit"
	TagTimeWasting WhyTag = "timeWasting"
	TagUnnecessary WhyTag = "unnecessary"
	TagImpulsive   WhyTag = "impulsive"
)

// WhyTags returns the fixed tag vocabulary.
func WhyTags() []WhyTag {
	return []WhyTag{
		TagHarmful, TagExpensive, TagUseless, TagUnhealthy, TagAddictive,
		TagWasteful, TagBadHabit, TagTimeWasting, TagUnnecessary, TagImpulsive,
	}
}

// IsWhyTag reports whether t belongs to the vocabulary. Matching is exact.
func IsWhyTag(t WhyTag) bool {
	for _, known := range WhyTags() {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultPresets are shown to users who have not saved their own.
func DefaultPresets() []Preset {
	return []Preset{
		{Position: 0, Icon: "☕", Name: "Coffee", Price: decimal.NewFromInt(5), Category: CategoryDrinks},
		{Position: 1, Icon: "🚬", Name: "Cigarettes", Price: decimal.NewFromInt(10), Category: CategoryHabits},
		{Position: 2, Icon: "🍔", Name: "Fast Food", Price: decimal.NewFromInt(15), Category: CategoryFood},
		{Position: 3, Icon: "🍺", Name: "Alcohol", Price: decimal.NewFromInt(20), Category: CategoryDrinks},
		{Position: 4, Icon: "🍿", Name: "Snacks", Price: decimal.NewFromInt(8), Category: CategoryFood},
		{Position: 5, Icon: "🚕", Name: "Taxi/Uber", Price: decimal.NewFromInt(25), Category: CategoryOther},
		{Position: 6, Icon: "🛍️", Name: "Shopping", Price: decimal.NewFromInt(50), Category: CategoryShopping},
		{Position: 7, Icon: "📺", Name: "Streaming", Price: decimal.NewFromInt(15), Category: CategoryEntertainment},
	}
}
