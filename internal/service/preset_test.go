package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/achievement"
	"refusal-tracker/internal/model"
	"refusal-tracker/internal/repository"
)

func TestPresetService_DefaultsAndReset(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "alice")
	ctx := context.Background()

	list, err := e.presets.List(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, list.IsDefault)
	assert.Len(t, list.Presets, len(model.DefaultPresets()))

	_, err = e.presets.Set(ctx, u.ID, []model.Preset{
		{Icon: "🍩", Name: "Donut", Price: dec("3"), Category: model.CategoryFood},
	})
	require.NoError(t, err)

	list, err = e.presets.List(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, list.IsDefault)
	require.Len(t, list.Presets, 1)
	assert.Equal(t, "Donut", list.Presets[0].Name)

	list, err = e.presets.Reset(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, list.IsDefault)

	list, err = e.presets.List(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, list.IsDefault)

	_, err = e.presets.List(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestPresetService_Set_TagAchievements(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "alice")
	ctx := context.Background()

	harmful := []model.WhyTag{model.TagHarmful, model.TagHarmful}
	res, err := e.presets.Set(ctx, u.ID, []model.Preset{
		{Name: "Cigarettes", Price: dec("10"), Category: "habits", Tags: harmful},
		{Name: "Chips", Price: dec("2"), Category: "food", Tags: []model.WhyTag{model.TagUnhealthy}},
		{Name: "Beer", Price: dec("4"), Category: "drinks", Tags: []model.WhyTag{model.TagHarmful, model.TagExpensive}},
	})
	require.NoError(t, err)

	assert.Equal(t, []model.WhyTag{model.TagHarmful}, res.Presets[0].Tags)
	assert.Equal(t, 2, res.Presets[2].Position)
	assert.ElementsMatch(t, []string{achievement.CodeReasonSeeker, achievement.CodeHealthWarrior}, res.NewAchievements)

	again, err := e.presets.Set(ctx, u.ID, res.Presets)
	require.NoError(t, err)
	assert.Empty(t, again.NewAchievements)
}

func TestPresetService_Set_Validation(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "alice")
	ctx := context.Background()

	_, err := e.presets.Set(ctx, u.ID, []model.Preset{
		{Name: "Donut", Price: dec("3"), Category: "food"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		preset model.Preset
		want   error
	}{
		{"empty name", model.Preset{Name: " ", Price: dec("1"), Category: "food"}, ErrNameRequired},
		{"zero price", model.Preset{Name: "Tea", Price: dec("0"), Category: "drinks"}, ErrInvalidAmount},
		{"bad category", model.Preset{Name: "Tea", Price: dec("1"), Category: "beverages"}, ErrInvalidCategory},
		{"bad tag", model.Preset{Name: "Tea", Price: dec("1"), Category: "drinks", Tags: []model.WhyTag{"Harmful"}}, ErrInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.presets.Set(ctx, u.ID, []model.Preset{tt.preset})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := e.presets.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list.Presets, 1)
	assert.Equal(t, "Donut", list.Presets[0].Name)
}
