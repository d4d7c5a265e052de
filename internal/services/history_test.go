package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/cache"
	"ledgerline/internal/core"
	"ledgerline/internal/repository/memory"
)

func TestEventsFor_UnknownModeIsEmpty(t *testing.T) {
	svc := NewModeService(memory.New())
	evs, err := svc.EventsFor(context.Background(), 1, "party_mode")
	require.NoError(t, err)
	assert.Nil(t, evs)
}

func TestHistoryByMode(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewModeService(store)

	add(t, store, core.Income, "100", date(2025, 3, 5))
	add(t, store, core.Expense, "150", date(2025, 3, 6))
	_, err := svc.RefreshAt(ctx, 1, *date(2025, 3, 20))
	require.NoError(t, err)
	add(t, store, core.Income, "200", date(2025, 3, 7))
	_, err = svc.RefreshAt(ctx, 1, *date(2025, 3, 21))
	require.NoError(t, err)

	grouped, err := svc.HistoryByMode(ctx, 1)
	require.NoError(t, err)
	require.Contains(t, grouped, core.Lockdown)
	assert.Len(t, grouped[core.Lockdown], 3)
	assert.NotContains(t, grouped, core.Survival)
	for mode, evs := range grouped {
		for i := 1; i < len(evs); i++ {
			assert.False(t, evs[i].Timestamp.After(evs[i-1].Timestamp), "%s history must be newest first", mode)
		}
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := *date(2025, 3, 21)
	c := cache.NewLRU[int64, Evaluation](10, time.Minute)
	svc := NewModeService(store, WithClock(func() time.Time { return now }), WithResultCache(c))

	t.Run("unknown mode", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, 1, "Yolo Mode")
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("no record yet", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, 1, "lockdown")
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	add(t, store, core.Income, "100", date(2025, 3, 5))
	add(t, store, core.Expense, "150", date(2025, 3, 6))
	_, err := svc.RefreshAt(ctx, 1, *date(2025, 3, 20))
	require.NoError(t, err)
	add(t, store, core.Income, "200", date(2025, 3, 7))
	_, err = svc.Refresh(ctx, 1)
	require.NoError(t, err)

	t.Run("existing record", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, 1, "lockdown_mode")
		require.NoError(t, err)
		require.NotNil(t, d)

		assert.Equal(t, core.Lockdown, d.Record.Name)
		assert.Len(t, d.History, 3)
		require.Len(t, d.Progress, 1)
		assert.Equal(t, 50, d.Progress[0].Progress)
		assert.True(t, d.Progress[0].Timestamp.Equal(now))
		assert.Equal(t, core.Lockdown, d.Current.Mode)
		assert.Equal(t, 50, d.Current.Progress)
		assert.NotEmpty(t, d.Tips)
	})
}
