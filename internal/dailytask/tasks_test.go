package dailytask

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/model"
)

func entry(amount string, category model.Category) model.Entry {
	return model.Entry{USDAmount: decimal.RequireFromString(amount), Category: category}
}

func TestCatalog(t *testing.T) {
	all := All()
	assert.Len(t, all, 15)
	assert.Len(t, Tasks, 15)
	assert.Equal(t, "monday_save_20", all[0].Code)
	assert.Equal(t, InviteFriend, all[len(all)-1].Code)

	for code, task := range Tasks {
		assert.Equal(t, code, task.Code)
		assert.Positive(t, task.Points, code)
		assert.Positive(t, task.Target, code)
		if task.Kind == KindCategory {
			_, ok := model.ParseCategory(string(task.Category))
			assert.True(t, ok, "task %s has unknown category %q", code, task.Category)
		}
	}
}

func TestForWeekday(t *testing.T) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		tasks := ForWeekday(day)
		require.Len(t, tasks, 3, day.String())
		assert.Equal(t, day, tasks[0].Weekday)
		assert.Equal(t, day, tasks[1].Weekday)
		assert.Equal(t, InviteFriend, tasks[2].Code)
	}

	codes := []string{}
	for _, task := range ForWeekday(time.Wednesday) {
		codes = append(codes, task.Code)
	}
	assert.Equal(t, []string{"wednesday_food", "wednesday_streak", InviteFriend}, codes)

	assert.True(t, Offered("monday_3_entries", time.Monday))
	assert.True(t, Offered(InviteFriend, time.Friday))
	assert.False(t, Offered("monday_3_entries", time.Tuesday))
	assert.False(t, Offered("unknown", time.Monday))
}

func TestNewStats(t *testing.T) {
	s := NewStats([]model.Entry{
		entry("12.5", model.CategoryFood),
		entry("30", model.CategoryHabits),
		entry("7.5", model.CategoryFood),
	}, 4, 2)

	assert.Equal(t, 3, s.TodayEntries)
	assert.True(t, decimal.NewFromInt(50).Equal(s.TodayAmount))
	assert.True(t, decimal.NewFromInt(30).Equal(s.LargestEntry))
	assert.Equal(t, 2, s.CategoryCounts[model.CategoryFood])
	assert.Equal(t, 1, s.CategoryCounts[model.CategoryHabits])
	assert.Equal(t, 4, s.Streak)
	assert.Equal(t, 2, s.Referrals)
}

func TestCompletedAndProgress(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		stats     Stats
		completed bool
		progress  string
	}{
		{"entries below target", "monday_3_entries", NewStats([]model.Entry{entry("1", "other"), entry("1", "other")}, 0, 0), false, "2"},
		{"entries at target", "monday_3_entries", NewStats([]model.Entry{entry("1", "other"), entry("1", "other"), entry("1", "other")}, 0, 0), true, "3"},
		{"amount summed over the day", "monday_save_20", NewStats([]model.Entry{entry("12", "food"), entry("8", "food")}, 0, 0), true, "20"},
		{"amount partial", "saturday_big_save", NewStats([]model.Entry{entry("12.34", "food")}, 0, 0), false, "12.34"},
		{"per entry amount ignores total", "thursday_high_value", NewStats([]model.Entry{entry("20", "food"), entry("20", "food")}, 0, 0), false, "20"},
		{"per entry amount met", "thursday_high_value", NewStats([]model.Entry{entry("31", "food")}, 0, 0), true, "30"},
		{"category counts only that category", "tuesday_habits", NewStats([]model.Entry{entry("1", "habits"), entry("1", "food")}, 0, 0), false, "1"},
		{"category met", "wednesday_food", NewStats([]model.Entry{entry("1", "food"), entry("1", "food"), entry("1", "food"), entry("1", "food")}, 0, 0), true, "3"},
		{"streak uses tracker value", "wednesday_streak", NewStats(nil, 3, 0), true, "3"},
		{"streak short", "sunday_clean_slate", NewStats(nil, 6, 0), false, "6"},
		{"no referrals", InviteFriend, NewStats(nil, 0, 0), false, "0"},
		{"one referral", InviteFriend, NewStats(nil, 0, 1), true, "1"},
		{"many referrals capped", InviteFriend, NewStats(nil, 0, 5), true, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, ok := Get(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.completed, task.Completed(tt.stats))
			got := task.Progress(tt.stats)
			assert.True(t, decimal.RequireFromString(tt.progress).Equal(got), "progress %s", got)
			assert.True(t, got.LessThanOrEqual(task.Max()))
		})
	}
}

func TestUnknownKindNeverCompletes(t *testing.T) {
	task := Task{Code: "x", Kind: "mystery", Target: 1}
	assert.False(t, task.Completed(NewStats([]model.Entry{entry("100", "food")}, 100, 100)))
	assert.True(t, task.Progress(Stats{}).IsZero())
}
