package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refusal-tracker/internal/repository"
)

func TestSavingsService_Compare(t *testing.T) {
	ctx := context.Background()

	t.Run("no history uses fallback rate", func(t *testing.T) {
		e := newEnv(t)
		u := e.user(t, "alice")

		p, err := e.savings.Compare(ctx, u.ID, dec("100"))
		require.NoError(t, err)
		assert.False(t, p.WalletStats.HasData)
		assert.True(t, p.WeeklySavings.Equal(dec("30")), "got %s", p.WeeklySavings)
		assert.True(t, p.WeeklyAfter.Equal(dec("70")))
		assert.True(t, p.SavingsPercentage.Equal(dec("30")))
	})

	t.Run("observed savings below cap", func(t *testing.T) {
		e := newEnv(t)
		u := e.user(t, "alice")
		e.log(t, u.ID, "Lunch", "10", "food")

		p, err := e.savings.Compare(ctx, u.ID, dec("100"))
		require.NoError(t, err)
		assert.True(t, p.WalletStats.HasData)
		assert.Equal(t, 1, p.WalletStats.DaysTracking)
		assert.Equal(t, 1, p.WalletStats.EntriesCount)
		assert.True(t, p.WeeklySavings.Equal(dec("70")), "got %s", p.WeeklySavings)
		assert.True(t, p.WeeklyAfter.Equal(dec("30")))
	})

	t.Run("observed savings capped", func(t *testing.T) {
		e := newEnv(t)
		u := e.user(t, "alice")
		e.log(t, u.ID, "Lunch", "10", "food")

		p, err := e.savings.Compare(ctx, u.ID, dec("50"))
		require.NoError(t, err)
		assert.True(t, p.WeeklySavings.Equal(dec("47.5")), "got %s", p.WeeklySavings)
		assert.True(t, p.WeeklyAfter.Equal(dec("2.5")))
		assert.True(t, p.SavingsPercentage.Equal(dec("95")))
	})

	t.Run("non-positive baseline", func(t *testing.T) {
		e := newEnv(t)
		u := e.user(t, "alice")

		_, err := e.savings.Compare(ctx, u.ID, dec("0"))
		assert.ErrorIs(t, err, ErrInvalidBaseline)
		_, err = e.savings.Compare(ctx, u.ID, dec("-5"))
		assert.ErrorIs(t, err, ErrInvalidBaseline)
	})

	t.Run("unknown user", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.savings.Compare(ctx, 77, dec("100"))
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
