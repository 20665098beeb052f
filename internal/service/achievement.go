package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"refusal-tracker/internal/achievement"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/points"
	"refusal-tracker/internal/repository"
)

// AchievementService evaluates achievement rules and grants unlocks.
type AchievementService struct {
	achievements AchievementStore
	users        UserStore
	entries      EntryStore
	presets      PresetStore
	registry     *achievement.Registry
	calendar     Calendar
}

// NewAchievementService creates a new AchievementService instance.
// A nil registry uses the default rule set.
func NewAchievementService(
	achievements AchievementStore,
	users UserStore,
	entries EntryStore,
	presets PresetStore,
	registry *achievement.Registry,
	calendar Calendar,
) *AchievementService {
	if registry == nil {
		registry = achievement.NewDefaultRegistry()
	}
	return &AchievementService{
		achievements: achievements,
		users:        users,
		entries:      entries,
		presets:      presets,
		registry:     registry,
		calendar:     calendar,
	}
}

// Seed stores catalog achievements that are missing.
func (s *AchievementService) Seed(ctx context.Context) (int, error) {
	n, err := s.achievements.Seed(ctx, achievement.Catalog())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int("count", n).Int("rules", s.registry.Count()).Msg("Achievements seeded")
	}
	return n, nil
}

// Check evaluates every rule for the user and returns the codes unlocked by this call.
func (s *AchievementService) Check(ctx context.Context, userID int64) ([]string, error) {
	c, err := s.context(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return s.grant(ctx, userID, s.registry.Evaluate(c))
}

// CheckTags evaluates only the preset tag rules.
func (s *AchievementService) CheckTags(ctx context.Context, userID int64) ([]string, error) {
	c, err := s.context(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return s.grant(ctx, userID, s.registry.EvaluateTags(c))
}

// List returns the catalog annotated with the user's unlocks, in catalog order.
func (s *AchievementService) List(ctx context.Context, userID int64) ([]model.AchievementStatus, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	all, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.achievements.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlockedAt := make(map[int64]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	statuses := make([]model.AchievementStatus, 0, len(all))
	for _, a := range all {
		status := model.AchievementStatus{Achievement: a}
		if at, ok := unlockedAt[a.ID]; ok {
			at := at
			status.IsUnlocked = true
			status.UnlockedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// context loads the rule inputs. Entries and referrals are skipped for tag-only checks.
func (s *AchievementService) context(ctx context.Context, userID int64, full bool) (*achievement.Context, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := &achievement.Context{Points: user.Points}
	c.Presets, c.PresetsErr = s.presets.List(ctx, userID)
	if c.PresetsErr != nil {
		log.Warn().Err(c.PresetsErr).Int64("user_id", userID).Msg("Failed to load presets for achievements")
	}
	if !full {
		return c, nil
	}

	c.Entries, err = s.entries.ListByUser(ctx, userID, model.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	c.Streak = streakOf(c.Entries, s.calendar.loc())

	c.Referrals, err = s.users.CountReferrals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}
	return c, nil
}

// grant stores unlocks for satisfied results. Codes missing from storage are skipped.
func (s *AchievementService) grant(ctx context.Context, userID int64, results []achievement.Result) ([]string, error) {
	for _, r := range achievement.Failed(results) {
		log.Warn().Err(r.Err).Str("code", r.Code).Int64("user_id", userID).Msg("Achievement rule failed")
	}

	granted := []string{}
	for _, code := range achievement.Satisfied(results) {
		a, err := s.achievements.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrAchievementNotFound) {
				log.Debug().Str("code", code).Msg("Achievement not in catalog, skipping")
				continue
			}
			return granted, err
		}

		has, err := s.achievements.HasUnlocked(ctx, userID, a.ID)
		if err != nil {
			return granted, err
		}
		if has {
			continue
		}

		// Grant is still insert-if-absent; a concurrent check may have won.
		created, err := s.achievements.Grant(ctx, userID, a.ID)
		if err != nil {
			return granted, err
		}
		if created {
			log.Info().Str("code", code).Int64("user_id", userID).Msg("Achievement unlocked")
			granted = append(granted, code)
		}
	}
	return granted, nil
}

func streakOf(entries []model.Entry, loc *time.Location) int {
	dates := make([]time.Time, len(entries))
	for i, e := range entries {
		dates[i] = e.CreatedAt
	}
	return points.Streak(dates, loc)
}
