package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"refusal-tracker/internal/model"
	"refusal-tracker/internal/service"
)

// CLI is the kong command tree.
type CLI struct {
	Config string `help:"Directory containing config.yaml." type:"path" default:"config"`

	Migrate MigrateCmd `cmd:"" help:"Apply the schema and seed achievements."`
	User    struct {
		Create UserCreateCmd `cmd:"" help:"Register a user."`
		Show   UserShowCmd   `cmd:"" help:"Show points, rank and streak."`
	} `cmd:"" help:"Manage users."`
	Entry struct {
		Add  EntryAddCmd  `cmd:"" help:"Log a refused purchase."`
		List EntryListCmd `cmd:"" help:"List logged refusals."`
	} `cmd:"" help:"Manage refusal entries."`
	Achievements struct {
		Check     AchievementsCheckCmd     `cmd:"" help:"Evaluate every achievement rule."`
		CheckTags AchievementsCheckTagsCmd `cmd:"" name:"check-tags" help:"Evaluate the why tag rules."`
		List      AchievementsListCmd      `cmd:"" help:"List achievements with unlock state."`
	} `cmd:"" help:"Inspect achievements."`
	Streak  StreakCmd  `cmd:"" help:"Show the current logging streak."`
	Compare CompareCmd `cmd:"" help:"Project savings against a weekly spend."`
	Tasks   struct {
		List     TasksListCmd     `cmd:"" help:"Show today's tasks."`
		Complete TasksCompleteCmd `cmd:"" help:"Claim a completed task."`
	} `cmd:"" help:"Daily tasks."`
	Goals struct {
		Add  GoalsAddCmd  `cmd:"" help:"Add a savings goal."`
		List GoalsListCmd `cmd:"" help:"List goals with progress."`
		Seed GoalsSeedCmd `cmd:"" help:"Create the starter goals."`
	} `cmd:"" help:"Savings goals."`
	Presets struct {
		List  PresetsListCmd  `cmd:"" help:"Show quick-entry presets."`
		Set   PresetsSetCmd   `cmd:"" help:"Replace presets from a JSON array."`
		Reset PresetsResetCmd `cmd:"" help:"Restore the default presets."`
	} `cmd:"" help:"Quick-entry presets."`
	Leaderboard LeaderboardCmd `cmd:"" help:"Show the points leaderboard."`
	Referrals   ReferralsCmd   `cmd:"" help:"Show referral statistics."`
	Currencies  CurrenciesCmd  `cmd:"" help:"List supported currencies and rates."`
}

// UserFlag selects the acting user.
type UserFlag struct {
	User string `short:"u" required:"" help:"Username."`
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "migrate", func(ctx context.Context, d *Dependencies) (any, error) {
		if d.Migrate != nil {
			if err := d.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		seeded, err := d.Achievements.Seed(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "ok", "achievementsSeeded": seeded}, nil
	})
}

type UserCreateCmd struct {
	Username string `arg:"" help:"Username (3-32 letters, digits or underscores)."`
	Ref      string `help:"Referral code of the inviting user."`
}

func (c *UserCreateCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "user create", func(ctx context.Context, d *Dependencies) (any, error) {
		return d.Users.Create(ctx, c.Username, c.Ref)
	})
}

type UserShowCmd struct {
	UserFlag `embed:""`
}

func (c *UserShowCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "user show", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Users.Profile(ctx, id)
	})
}

type EntryAddCmd struct {
	UserFlag `embed:""`

	Name     string `short:"n" required:"" help:"What was refused."`
	Price    string `short:"p" required:"" help:"Price per unit."`
	Quantity int    `short:"q" default:"1" help:"Number of units."`
	Category string `short:"c" default:"other" help:"Category: habits, food, drinks, entertainment, shopping, other."`
	Currency string `default:"USD" help:"ISO currency code of the price."`
	Note     string `help:"Free-form note."`
}

func (c *EntryAddCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "entry add", func(ctx context.Context, d *Dependencies) (any, error) {
		price, err := parseDecimal("price", c.Price)
		if err != nil {
			return nil, err
		}
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Entries.Create(ctx, service.NewEntry{
			UserID:       id,
			Name:         c.Name,
			PricePerUnit: price,
			Quantity:     c.Quantity,
			Category:     c.Category,
			Currency:     c.Currency,
			Note:         c.Note,
		})
	})
}

type EntryListCmd struct {
	UserFlag `embed:""`

	Period string `default:"all" enum:"today,week,month,all" help:"Window: today, week, month or all."`
}

func (c *EntryListCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "entry list", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Entries.List(ctx, id, service.Period(c.Period))
	})
}

type AchievementsCheckCmd struct {
	UserFlag `embed:""`
}

func (c *AchievementsCheckCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "achievements check", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		codes, err := d.Achievements.Check(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"newAchievements": codes}, nil
	})
}

type AchievementsCheckTagsCmd struct {
	UserFlag `embed:""`
}

func (c *AchievementsCheckTagsCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "achievements check-tags", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		codes, err := d.Achievements.CheckTags(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"newAchievements": codes}, nil
	})
}

type AchievementsListCmd struct {
	UserFlag `embed:""`
}

func (c *AchievementsListCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "achievements list", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		statuses, err := d.Achievements.List(ctx, id)
		if err != nil {
			return nil, err
		}
		unlocked := 0
		for _, s := range statuses {
			if s.IsUnlocked {
				unlocked++
			}
		}
		return map[string]any{"achievements": statuses, "unlocked": unlocked, "total": len(statuses)}, nil
	})
}

type StreakCmd struct {
	UserFlag `embed:""`
}

func (c *StreakCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "streak", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		streak, err := d.Entries.Streak(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]int{"streak": streak}, nil
	})
}

type CompareCmd struct {
	UserFlag `embed:""`

	Weekly string `short:"w" required:"" help:"Weekly spend before tracking, in the reference currency."`
}

func (c *CompareCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "compare", func(ctx context.Context, d *Dependencies) (any, error) {
		weekly, err := parseDecimal("weekly", c.Weekly)
		if err != nil {
			return nil, err
		}
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Savings.Compare(ctx, id, weekly)
	})
}

type TasksListCmd struct {
	UserFlag `embed:""`
}

func (c *TasksListCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "tasks list", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Tasks.List(ctx, id)
	})
}

type TasksCompleteCmd struct {
	UserFlag `embed:""`

	Code string `arg:"" help:"Task code."`
}

func (c *TasksCompleteCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "tasks complete", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Tasks.Complete(ctx, id, c.Code)
	})
}

type GoalsAddCmd struct {
	UserFlag `embed:""`

	Name     string `short:"n" required:"" help:"Goal name."`
	Target   string `short:"t" required:"" help:"Target amount."`
	Currency string `default:"USD" help:"ISO currency code of the target."`
}

func (c *GoalsAddCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "goals add", func(ctx context.Context, d *Dependencies) (any, error) {
		target, err := parseDecimal("target", c.Target)
		if err != nil {
			return nil, err
		}
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Goals.Create(ctx, service.NewGoal{UserID: id, Name: c.Name, TargetAmount: target, Currency: c.Currency})
	})
}

type GoalsListCmd struct {
	UserFlag `embed:""`
}

func (c *GoalsListCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "goals list", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Goals.List(ctx, id)
	})
}

type GoalsSeedCmd struct {
	UserFlag `embed:""`

	Currency string `help:"Currency to express the targets in. Defaults to the reference currency."`
}

func (c *GoalsSeedCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "goals seed", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		created, err := d.Goals.SeedDefaults(ctx, id, c.Currency)
		if err != nil {
			return nil, err
		}
		return map[string]int{"created": created}, nil
	})
}

type PresetsListCmd struct {
	UserFlag `embed:""`
}

func (c *PresetsListCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "presets list", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Presets.List(ctx, id)
	})
}

type PresetsSetCmd struct {
	UserFlag `embed:""`

	File string `arg:"" help:"JSON file with an array of presets, or - for stdin."`
}

func (c *PresetsSetCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "presets set", func(ctx context.Context, d *Dependencies) (any, error) {
		presets, err := c.read(d)
		if err != nil {
			return nil, err
		}
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Presets.Set(ctx, id, presets)
	})
}

func (c *PresetsSetCmd) read(d *Dependencies) ([]model.Preset, error) {
	var r io.Reader = d.In
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open presets file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var presets []model.Preset
	if err := json.NewDecoder(r).Decode(&presets); err != nil {
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}
	return presets, nil
}

type PresetsResetCmd struct {
	UserFlag `embed:""`
}

func (c *PresetsResetCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "presets reset", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Presets.Reset(ctx, id)
	})
}

type LeaderboardCmd struct {
	User  string `short:"u" help:"Username to report the position of."`
	Limit int    `short:"l" default:"50" help:"Number of rows."`
}

func (c *LeaderboardCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "leaderboard", func(ctx context.Context, d *Dependencies) (any, error) {
		var id int64
		if c.User != "" {
			var err error
			if id, err = d.userID(ctx, c.User); err != nil {
				return nil, err
			}
		}
		return d.Leaderboard.Top(ctx, id, c.Limit)
	})
}

type ReferralsCmd struct {
	UserFlag `embed:""`
}

func (c *ReferralsCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "referrals", func(ctx context.Context, d *Dependencies) (any, error) {
		id, err := d.userID(ctx, c.User)
		if err != nil {
			return nil, err
		}
		return d.Referrals.Stats(ctx, id)
	})
}

type CurrenciesCmd struct{}

func (c *CurrenciesCmd) Run(ctx context.Context, d *Dependencies) error {
	return d.exec(ctx, "currencies", func(ctx context.Context, d *Dependencies) (any, error) {
		rates := make(map[string]string)
		for _, code := range d.Normalizer.Codes() {
			rate, _ := d.Normalizer.Rate(code)
			rates[code] = rate.String()
		}
		return map[string]any{"reference": d.Normalizer.Reference(), "rates": rates}, nil
	})
}
