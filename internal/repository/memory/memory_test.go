package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/core"
	"ledgerline/internal/repository"
)

func TestStore_Transactions(t *testing.T) {
	ctx := context.Background()
	s := New()

	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	for _, tx := range []core.Transaction{
		{UserID: 2, Amount: decimal.NewFromInt(10), Direction: core.Income, Date: &jan},
		{UserID: 1, Amount: decimal.NewFromInt(20), Direction: core.Expense, Date: &feb},
		{UserID: 1, Amount: decimal.NewFromInt(30), Direction: core.Income},
	} {
		_, err := s.AddTransaction(ctx, tx)
		require.NoError(t, err)
	}

	_, err := s.AddTransaction(ctx, core.Transaction{UserID: 1, Amount: decimal.NewFromInt(1), Direction: "GIFT"})
	assert.ErrorIs(t, err, core.ErrInvalidDirection)

	all, err := s.ListTransactions(ctx, 1, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bounded, err := s.ListTransactions(ctx, 1, repository.TransactionFilter{From: jan})
	require.NoError(t, err)
	require.Len(t, bounded, 1, "undated rows drop out once a bound is set")
	assert.True(t, bounded[0].Amount.Equal(decimal.NewFromInt(20)))

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestStore_GetOrCreateMode(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec, created, err := s.GetOrCreateMode(ctx, core.ModeRecord{UserID: 1, Name: core.Saver, Progress: 10})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, rec.ID)

	again, created, err := s.GetOrCreateMode(ctx, core.ModeRecord{UserID: 1, Name: core.Saver, Progress: 99})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 10, again.Progress, "defaults only apply on create")

	again.Progress = 55
	require.NoError(t, s.SaveMode(ctx, again))
	got, err := s.GetMode(ctx, 1, core.Saver)
	require.NoError(t, err)
	assert.Equal(t, 55, got.Progress)

	_, err = s.GetMode(ctx, 1, core.Vacay)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.SaveMode(ctx, core.ModeRecord{UserID: 3, Name: core.Vacay})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _ = s.AppendHistory(ctx, core.HistoryEvent{UserID: 1, Mode: core.Saver, StatusChange: core.StatusProgress, Timestamp: t0})
	_, _ = s.AppendHistory(ctx, core.HistoryEvent{UserID: 1, Mode: core.Vacay, StatusChange: core.StatusUnlocked, Timestamp: t0.Add(time.Hour)})
	_, _ = s.AppendHistory(ctx, core.HistoryEvent{UserID: 1, Mode: core.Saver, StatusChange: core.StatusUnlocked, Timestamp: t0})
	_, _ = s.AppendHistory(ctx, core.HistoryEvent{UserID: 2, Mode: core.Saver, StatusChange: core.StatusProgress, Timestamp: t0})

	all, err := s.ListHistory(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, core.Vacay, all[0].Mode)
	assert.Equal(t, core.StatusUnlocked, all[1].StatusChange, "same timestamp: later append first")
	assert.Equal(t, core.StatusProgress, all[2].StatusChange)

	saver, err := s.ListHistory(ctx, 1, core.Saver)
	require.NoError(t, err)
	assert.Len(t, saver, 2)
}
