package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/config"
	"ledgerline/internal/core"
)

func testConfig(backend string, dir string) *config.Config {
	return &config.Config{
		DataBackend:        backend,
		SQLiteDBPath:       filepath.Join(dir, "ledger.db"),
		RefreshInterval:    time.Minute,
		RefreshConcurrency: 1,
		EvalTimezone:       "UTC",
		ResultCacheSize:    10,
		ResultCacheTTL:     time.Minute,
		LogLevel:           "info",
	}
}

func TestNew(t *testing.T) {
	for _, kind := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			b, err := New(ctx, testConfig(kind, t.TempDir()), Options{})
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, b.Cleanup()) })

			assert.Nil(t, b.AMQP)
			on := time.Now().UTC()
			_, unlocked, err := b.Transactions.AddTransaction(ctx, core.Transaction{
				UserID: 1, Amount: decimal.NewFromInt(10), Direction: core.Expense, Date: &on,
			})
			require.NoError(t, err)
			require.Len(t, unlocked, 1)
			assert.Equal(t, core.Lockdown, unlocked[0].Name)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig("sheets", t.TempDir()), Options{})
	assert.Error(t, err)
}
