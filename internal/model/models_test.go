package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"habits", CategoryHabits, true},
		{"  Food ", CategoryFood, true},
		{"DRINKS", CategoryDrinks, true},
		{"привычки", CategoryHabits, true},
		{"Привычки", CategoryHabits, true},
		{"gambling", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsWhyTag(t *testing.T) {
	for _, tag := range WhyTags() {
		assert.True(t, IsWhyTag(tag), tag)
	}
	assert.False(t, IsWhyTag("badhabit"))
	assert.False(t, IsWhyTag("boring"))
	assert.Len(t, WhyTags(), 10)
}

func TestEntry_NativeAmount(t *testing.T) {
	e := Entry{PricePerUnit: decimal.RequireFromString("2.50"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("7.5").Equal(e.NativeAmount()))
}

func TestDateRange_Contains(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	r := DateRange{From: from, To: to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(from.Add(23*time.Hour)))
	assert.False(t, r.Contains(to))
	assert.False(t, r.Contains(from.Add(-time.Second)))
	assert.True(t, DateRange{}.Contains(from))
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	assert.Len(t, presets, 8)
	for i, p := range presets {
		assert.Equal(t, i, p.Position)
		_, ok := ParseCategory(string(p.Category))
		assert.True(t, ok, p.Name)
		assert.Empty(t, p.Tags)
	}
}
