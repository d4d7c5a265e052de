package modes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/internal/core"
)

func TestEvaluateAll_NoTransactions(t *testing.T) {
	refs := []time.Time{
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),  // inside the survival window
		time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), // outside it
	}
	for _, ref := range refs {
		results := EvaluateAll(nil, ref)
		require.Len(t, results, len(core.ModeNames))
		for _, r := range results {
			assert.False(t, r.Unlocked, "%s", r.Mode)
			assert.Equal(t, 0, r.Progress, "%s", r.Mode)
			assert.NotEmpty(t, r.Notes, "%s", r.Mode)
			assert.NotEmpty(t, r.Icon, "%s", r.Mode)
		}
	}
}

func TestLockdown(t *testing.T) {
	ref := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		txs          []core.Transaction
		wantUnlocked bool
		wantProgress int
	}{
		{
			name:         "expenses above income saturate",
			txs:          []core.Transaction{income("100", at(2025, 1, 1)), expense("150", at(2025, 1, 2))},
			wantUnlocked: true,
			wantProgress: 100,
		},
		{
			name:         "zero income still unlocks",
			txs:          []core.Transaction{expense("50", at(2025, 1, 2))},
			wantUnlocked: true,
			wantProgress: 0,
		},
		{
			name:         "partial ratio",
			txs:          []core.Transaction{income("100", nil), expense("40.50", at(2025, 1, 2))},
			wantUnlocked: false,
			wantProgress: 40,
		},
		{
			name:         "equal is not above",
			txs:          []core.Transaction{income("100", nil), expense("100", nil)},
			wantUnlocked: false,
			wantProgress: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := LockdownEvaluator{}.Evaluate(tt.txs, ref)
			assert.Equal(t, tt.wantUnlocked, r.Unlocked)
			assert.Equal(t, tt.wantProgress, r.Progress)
			assert.Equal(t, "Lockdown Mode", r.Name)
		})
	}

	r := LockdownEvaluator{}.Evaluate([]core.Transaction{income("100", nil), expense("150", nil)}, ref)
	assert.Equal(t, "Total expenses: $150.00, Total income: $100.00", r.Notes)
}

func TestSaver(t *testing.T) {
	ref := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	salary := []core.Transaction{
		income("1000", at(2025, 1, 20)),
		income("1000", at(2025, 2, 20)),
		income("1000", at(2025, 3, 20)),
	}

	t.Run("savings equal to target", func(t *testing.T) {
		r := SaverEvaluator{}.Evaluate(salary, ref)
		assert.True(t, r.Unlocked)
		assert.Equal(t, 100, r.Progress)
		assert.Contains(t, r.Notes, "$3000.00 of $3000.00 target")
	})

	t.Run("uneven monthly income at the exact target", func(t *testing.T) {
		txs := []core.Transaction{
			income("600", at(2025, 1, 20)),
			income("700", at(2025, 2, 20)),
			income("700", at(2025, 3, 20)),
		}
		r := SaverEvaluator{}.Evaluate(txs, ref)
		assert.True(t, r.Unlocked)
		assert.Equal(t, 100, r.Progress)
		assert.Equal(t, "Savings: $2000.00 of $2000.00 target (3x monthly income of $666.67)", r.Notes)
	})

	t.Run("uneven monthly income one cent short", func(t *testing.T) {
		txs := []core.Transaction{
			income("600", at(2025, 1, 20)),
			income("700", at(2025, 2, 20)),
			income("700", at(2025, 3, 20)),
			expense("0.01", at(2025, 4, 1)),
		}
		r := SaverEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 99, r.Progress)
	})

	t.Run("one short of target", func(t *testing.T) {
		txs := append(append([]core.Transaction{}, salary...), expense("1", at(2025, 4, 2)))
		r := SaverEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 99, r.Progress)
	})

	t.Run("months without income are not averaged", func(t *testing.T) {
		txs := append(append([]core.Transaction{}, salary[:1]...), expense("10", at(2025, 2, 2)))
		r := SaverEvaluator{}.Evaluate(txs, ref)
		// avg 1000 from one month, target 3000, savings 990
		assert.Equal(t, 33, r.Progress)
		assert.False(t, r.Unlocked)
	})

	t.Run("negative savings clamp to zero", func(t *testing.T) {
		txs := append(append([]core.Transaction{}, salary...), expense("5000", nil))
		r := SaverEvaluator{}.Evaluate(txs, ref)
		assert.Equal(t, 0, r.Progress)
		assert.False(t, r.Unlocked)
	})

	t.Run("income only outside the window", func(t *testing.T) {
		r := SaverEvaluator{}.Evaluate([]core.Transaction{income("1000", at(2024, 1, 1))}, ref)
		assert.Equal(t, 0, r.Progress)
		assert.False(t, r.Unlocked)
		assert.Equal(t, "Insufficient income data", r.Notes)
	})
}

func TestStability(t *testing.T) {
	ref := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	month := func(m time.Month, in, out string) []core.Transaction {
		return []core.Transaction{income(in, at(2025, m, 5)), expense(out, at(2025, m, 6))}
	}
	build := func(parts ...[]core.Transaction) []core.Transaction {
		var all []core.Transaction
		for _, p := range parts {
			all = append(all, p...)
		}
		return all
	}

	t.Run("three months cap at 75", func(t *testing.T) {
		txs := build(month(3, "1000", "800"), month(4, "1000", "800"), month(5, "1000", "800"))
		r := StabilityEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 75, r.Progress)
		assert.Contains(t, r.Notes, "Months with data: 3/4 needed")
	})

	t.Run("four consistent months unlock", func(t *testing.T) {
		txs := build(month(2, "1000", "800"), month(3, "1000", "800"), month(4, "1000", "800"), month(5, "1000", "900"))
		r := StabilityEvaluator{}.Evaluate(txs, ref)
		assert.True(t, r.Unlocked)
		assert.Equal(t, 100, r.Progress)
	})

	t.Run("outlier breaks consistency", func(t *testing.T) {
		txs := build(month(2, "1000", "800"), month(3, "1000", "800"), month(4, "1000", "800"), month(5, "1000", "1200"))
		r := StabilityEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 0, r.Progress)
		assert.Contains(t, r.Notes, "Average ratio: 90%")
	})

	t.Run("months without expenses are excluded", func(t *testing.T) {
		txs := build(month(3, "1000", "800"), month(4, "1000", "800"), month(5, "1000", "800"),
			[]core.Transaction{income("1000", at(2025, 2, 5))})
		r := StabilityEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 75, r.Progress)
	})

	t.Run("mean spans every qualifying month in the window", func(t *testing.T) {
		txs := build(
			[]core.Transaction{income("1000", at(2025, 1, 25)), expense("800", at(2025, 1, 26))},
			month(2, "1000", "800"), month(3, "1000", "800"), month(4, "1000", "800"), month(5, "1000", "800"),
		)
		r := StabilityEvaluator{}.Evaluate(txs, ref)
		assert.True(t, r.Unlocked)
		assert.Equal(t, 100, r.Progress)
		assert.Contains(t, r.Notes, "Consistent months: 5/4 needed")
	})
}

func TestVacay(t *testing.T) {
	ref := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	month := func(m time.Month, in, out string) []core.Transaction {
		return []core.Transaction{income(in, at(2025, m, 1)), expense(out, at(2025, m, 2))}
	}

	t.Run("three saving months", func(t *testing.T) {
		var txs []core.Transaction
		txs = append(txs, month(2, "1000", "800")...)
		txs = append(txs, month(3, "1000", "850")...) // exactly 15%
		txs = append(txs, month(4, "1000", "500")...)
		r := VacayEvaluator{}.Evaluate(txs, ref)
		assert.True(t, r.Unlocked)
		assert.Equal(t, 100, r.Progress)
		assert.Contains(t, r.Notes, "Months with 15%+ savings: 3/3 needed")
		assert.Contains(t, r.Notes, "2025-3: 15% savings rate")
	})

	t.Run("two of three months", func(t *testing.T) {
		var txs []core.Transaction
		txs = append(txs, month(2, "1000", "800")...)
		txs = append(txs, month(3, "1000", "900")...)
		txs = append(txs, month(4, "1000", "500")...)
		r := VacayEvaluator{}.Evaluate(txs, ref)
		assert.False(t, r.Unlocked)
		assert.Equal(t, 66, r.Progress)
	})

	t.Run("months before the window are ignored", func(t *testing.T) {
		var txs []core.Transaction
		txs = append(txs, month(1, "1000", "100")...) // Jan 1-2 is more than 90 days back
		txs = append(txs, month(3, "1000", "100")...)
		r := VacayEvaluator{}.Evaluate(txs, ref)
		assert.Equal(t, 33, r.Progress)
	})

	t.Run("only expenses", func(t *testing.T) {
		r := VacayEvaluator{}.Evaluate([]core.Transaction{expense("10", at(2025, 4, 2))}, ref)
		assert.Equal(t, 0, r.Progress)
		assert.False(t, r.Unlocked)
		assert.Contains(t, r.Notes, "No monthly data available yet")
	})
}

func TestSurvival(t *testing.T) {
	ref := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	base := []core.Transaction{
		income("400", at(2025, 2, 1)),
		income("600", at(2025, 2, 28)),
		income("9000", at(2025, 1, 15)), // not the previous month
	}

	tests := []struct {
		name         string
		extra        []core.Transaction
		ref          time.Time
		wantUnlocked bool
		wantProgress int
		wantNotes    string
	}{
		{
			name:         "more than half spent early",
			extra:        []core.Transaction{expense("600", at(2025, 3, 2))},
			ref:          ref,
			wantUnlocked: true,
			wantProgress: 60,
			wantNotes:    "Early month spending: $600.00 of $1000.00 (60%)",
		},
		{
			name:         "exactly half does not unlock",
			extra:        []core.Transaction{expense("500", at(2025, 3, 1))},
			ref:          ref,
			wantUnlocked: false,
			wantProgress: 50,
		},
		{
			name:         "expenses after the reference time are ignored",
			extra:        []core.Transaction{expense("100", at(2025, 3, 2)), expense("900", at(2025, 3, 6))},
			ref:          ref,
			wantUnlocked: false,
			wantProgress: 10,
		},
		{
			name:         "outside the first ten days",
			extra:        []core.Transaction{expense("900", at(2025, 3, 2))},
			ref:          time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			wantUnlocked: false,
			wantProgress: 0,
			wantNotes:    "Not in first 10 days of the month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := append(append([]core.Transaction{}, base...), tt.extra...)
			r := SurvivalEvaluator{}.Evaluate(txs, tt.ref)
			assert.Equal(t, tt.wantUnlocked, r.Unlocked)
			assert.Equal(t, tt.wantProgress, r.Progress)
			if tt.wantNotes != "" {
				assert.Equal(t, tt.wantNotes, r.Notes)
			}
		})
	}

	t.Run("no income last month", func(t *testing.T) {
		r := SurvivalEvaluator{}.Evaluate([]core.Transaction{expense("50", at(2025, 3, 1))}, ref)
		assert.Equal(t, 0, r.Progress)
		assert.Equal(t, "No income data from previous month", r.Notes)
	})

	t.Run("january looks back to december", func(t *testing.T) {
		txs := []core.Transaction{income("1000", at(2024, 12, 10)), expense("700", at(2025, 1, 3))}
		r := SurvivalEvaluator{}.Evaluate(txs, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
		assert.True(t, r.Unlocked)
		assert.Equal(t, 70, r.Progress)
	})
}
