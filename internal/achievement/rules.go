package achievement

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"refusal-tracker/internal/model"
)

var (
	budgetNinjaPoints = decimal.NewFromInt(40)
	coffeeNames       = []string{"coffee", "кофе"}
)

// DefaultRules returns the built-in predicates. sugar_free is catalogued but
// has no predicate.
func DefaultRules() []Rule {
	return []Rule{
		{Code: CodeCoffeeBreaker, Evaluate: nameContains(coffeeNames...)},
		{Code: CodeBudgetNinja, Evaluate: func(c *Context) (bool, error) {
			return c.Points.GreaterThanOrEqual(budgetNinjaPoints), nil
		}},
		{Code: CodeSmokeOut, Evaluate: streakAtLeast(14)},
		{Code: CodeMomentum, Evaluate: streakAtLeast(21)},
		{Code: CodeIronWill, Evaluate: streakAtLeast(30)},
		{Code: CodeConsistencyKing, Evaluate: streakAtLeast(60)},
		{Code: CodeRefHero, Evaluate: func(c *Context) (bool, error) {
			return c.Referrals >= 3, nil
		}},
		{Code: CodeReasonSeeker, Tag: true, Evaluate: totalTagsAtLeast(1)},
		{Code: CodeSelfAware, Tag: true, Evaluate: taggedPresetsAtLeast(5)},
		{Code: CodeHealthWarrior, Tag: true, Evaluate: presetsWithAnyTag(3, model.TagHarmful, model.TagUnhealthy)},
		{Code: CodeMoneyMaster, Tag: true, Evaluate: presetsWithAnyTag(3, model.TagExpensive, model.TagWasteful)},
		{Code: CodeHabitBreaker, Tag: true, Evaluate: presetsWithAnyTag(3, model.TagBadHabit, model.TagAddictive)},
		{Code: CodeTimeLord, Tag: true, Evaluate: presetsWithAnyTag(3, model.TagTimeWasting)},
		{Code: CodeMinimalist, Tag: true, Evaluate: presetsWithAnyTag(3, model.TagUnnecessary, model.TagUseless)},
		{Code: CodeWisdomKeeper, Tag: true, Evaluate: totalTagsAtLeast(10)},
	}
}

// nameContains matches any entry whose name contains one of needles,
// compared under Unicode case folding.
func nameContains(needles ...string) func(*Context) (bool, error) {
	folded := make([]string, len(needles))
	for i, n := range needles {
		folded[i] = cases.Fold().String(n)
	}
	return func(c *Context) (bool, error) {
		caser := cases.Fold()
		for _, e := range c.Entries {
			name := caser.String(e.Name)
			for _, n := range folded {
				if strings.Contains(name, n) {
					return true, nil
				}
			}
		}
		return false, nil
	}
}

func streakAtLeast(days int) func(*Context) (bool, error) {
	return func(c *Context) (bool, error) {
		return c.Streak >= days, nil
	}
}

func totalTagsAtLeast(n int) func(*Context) (bool, error) {
	return func(c *Context) (bool, error) {
		if c.PresetsErr != nil {
			return false, c.PresetsErr
		}
		total := 0
		for _, p := range c.Presets {
			total += len(p.Tags)
		}
		return total >= n, nil
	}
}

func taggedPresetsAtLeast(n int) func(*Context) (bool, error) {
	return func(c *Context) (bool, error) {
		if c.PresetsErr != nil {
			return false, c.PresetsErr
		}
		count := 0
		for _, p := range c.Presets {
			if len(p.Tags) > 0 {
				count++
			}
		}
		return count >= n, nil
	}
}

// presetsWithAnyTag counts presets carrying at least one tag from set.
func presetsWithAnyTag(n int, set ...model.WhyTag) func(*Context) (bool, error) {
	return func(c *Context) (bool, error) {
		if c.PresetsErr != nil {
			return false, c.PresetsErr
		}
		count := 0
		for _, p := range c.Presets {
			if hasAny(p.Tags, set) {
				count++
			}
		}
		return count >= n, nil
	}
}

func hasAny(tags, set []model.WhyTag) bool {
	for _, t := range tags {
		for _, s := range set {
			if t == s {
				return true
			}
		}
	}
	return false
}
