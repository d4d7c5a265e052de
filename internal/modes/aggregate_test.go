package modes

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/core"
)

func TestAggregate_MonthBoundary(t *testing.T) {
	txs := []core.Transaction{
		expense("10", at(2025, 1, 31)),
		expense("20", at(2025, 2, 1)),
		income("100", at(2025, 1, 2)),
	}

	buckets := Aggregate(txs, Window{}, time.UTC)
	require.Len(t, buckets, 2)
	assert.Equal(t, MonthKey{2025, time.January}, buckets[0].MonthKey)
	assert.True(t, buckets[0].Expenses.Equal(decimal.NewFromInt(10)))
	assert.True(t, buckets[0].Income.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, MonthKey{2025, time.February}, buckets[1].MonthKey)
	assert.True(t, buckets[1].Expenses.Equal(decimal.NewFromInt(20)))
}

func TestAggregate_UsesReferenceLocation(t *testing.T) {
	// 02:00 UTC on Feb 1 is still Jan 31 five hours west.
	d := time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC)
	txs := []core.Transaction{expense("5", &d)}

	west := time.FixedZone("UTC-5", -5*60*60)
	buckets := Aggregate(txs, Window{}, west)
	require.Len(t, buckets, 1)
	assert.Equal(t, time.January, buckets[0].Month)

	buckets = Aggregate(txs, Window{}, time.UTC)
	require.Len(t, buckets, 1)
	assert.Equal(t, time.February, buckets[0].Month)
}

func TestAggregate_SkipsMissingDatesAndOutOfWindow(t *testing.T) {
	ref := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		income("100", nil),
		income("50", at(2024, 12, 1)),
		income("25", at(2025, 4, 1)),
		income("75", at(2025, 4, 25)), // after ref
	}

	buckets := Aggregate(txs, Trailing(ref, 90), time.UTC)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Income.Equal(decimal.NewFromInt(25)))
}

func TestTotals_IncludesUndatedTransactions(t *testing.T) {
	tot := Totals([]core.Transaction{income("100", nil), expense("30", at(2025, 1, 1))})
	assert.True(t, tot.Income.Equal(decimal.NewFromInt(100)))
	assert.True(t, tot.Expenses.Equal(decimal.NewFromInt(30)))
}

func TestSumWindow(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC),
	}
	txs := []core.Transaction{
		income("10", at(2025, 2, 1)),
		income("20", at(2025, 2, 28)),
		income("40", at(2025, 3, 1)),
		expense("80", at(2025, 2, 10)),
		income("160", nil),
	}
	assert.True(t, SumWindow(txs, core.Income, w).Equal(decimal.NewFromInt(30)))
	assert.True(t, SumWindow(txs, core.Expense, w).Equal(decimal.NewFromInt(80)))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		ratio string
		limit int
		want  int
	}{
		{"0", 100, 0},
		{"0.999", 100, 99},
		{"1", 100, 100},
		{"1.5", 100, 100},
		{"-0.2", 100, 0},
		{"0.9", 75, 75},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percent(decimal.RequireFromString(tt.ratio), tt.limit), "percent(%s, %d)", tt.ratio, tt.limit)
	}
}

func TestCountPercent(t *testing.T) {
	assert.Equal(t, 66, countPercent(2, 3, 100))
	assert.Equal(t, 75, countPercent(3, 4, 75))
	assert.Equal(t, 75, countPercent(4, 4, 75))
	assert.Equal(t, 100, countPercent(5, 4, 100))
	assert.Equal(t, 0, countPercent(0, 4, 100))
	assert.Equal(t, 0, countPercent(1, 0, 100))
}
