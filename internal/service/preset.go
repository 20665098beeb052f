package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"refusal-tracker/internal/model"
)

// PresetList is what the quick-entry bar shows.
type PresetList struct {
	Presets []model.Preset `json:"presets"`
	// IsDefault is set when the user has not saved presets of their own.
	IsDefault bool `json:"isDefault"`
}

// PresetSaveResult is the outcome of saving presets.
type PresetSaveResult struct {
	Presets         []model.Preset `json:"presets"`
	NewAchievements []string       `json:"newAchievements"`
}

// PresetService manages quick-entry presets and their why tags.
type PresetService struct {
	presets      PresetStore
	users        UserStore
	achievements *AchievementService
}

// NewPresetService creates a new PresetService instance.
func NewPresetService(presets PresetStore, users UserStore, achievements *AchievementService) *PresetService {
	return &PresetService{presets: presets, users: users, achievements: achievements}
}

// List returns the user's presets, or the defaults when none are saved.
func (s *PresetService) List(ctx context.Context, userID int64) (*PresetList, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	saved, err := s.presets.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return &PresetList{Presets: model.DefaultPresets(), IsDefault: true}, nil
	}
	return &PresetList{Presets: saved}, nil
}

// Set replaces the user's presets and then runs the tag achievement check.
func (s *PresetService) Set(ctx context.Context, userID int64, presets []model.Preset) (*PresetSaveResult, error) {
	cleaned := make([]model.Preset, 0, len(presets))
	for i, p := range presets {
		c, err := validatePreset(p)
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i+1, err)
		}
		c.UserID = userID
		c.Position = i
		cleaned = append(cleaned, c)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.presets.ReplaceAll(ctx, userID, cleaned); err != nil {
		return nil, err
	}

	result := &PresetSaveResult{Presets: cleaned, NewAchievements: []string{}}
	if s.achievements != nil {
		codes, err := s.achievements.CheckTags(ctx, userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("Tag achievement check failed")
		}
		if len(codes) > 0 {
			result.NewAchievements = codes
		}
	}
	return result, nil
}

// Reset deletes saved presets so the defaults apply again.
func (s *PresetService) Reset(ctx context.Context, userID int64) (*PresetList, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.presets.DeleteAll(ctx, userID); err != nil {
		return nil, err
	}
	return &PresetList{Presets: model.DefaultPresets(), IsDefault: true}, nil
}

// validatePreset checks a preset and drops duplicate tags, keeping first occurrence.
func validatePreset(p model.Preset) (model.Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, ErrNameRequired
	}
	if !p.Price.IsPositive() {
		return p, ErrInvalidAmount
	}
	category, ok := model.ParseCategory(string(p.Category))
	if !ok {
		return p, ErrInvalidCategory
	}
	p.Category = category

	seen := make(map[model.WhyTag]bool, len(p.Tags))
	tags := make([]model.WhyTag, 0, len(p.Tags))
	for _, t := range p.Tags {
		if !model.IsWhyTag(t) {
			return p, fmt.Errorf("%w: %q", ErrInvalidTag, t)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	p.Tags = tags
	return p, nil
}
