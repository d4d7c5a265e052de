package modes

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

const survivalLastDay = 10

var survivalThreshold = decimal.RequireFromString("0.5")

// SurvivalEvaluator unlocks when more than half of last month's income is
// spent within the first ten days of the current month.
type SurvivalEvaluator struct{}

func (SurvivalEvaluator) Mode() core.ModeName { return core.Survival }

func (SurvivalEvaluator) Evaluate(txs []core.Transaction, ref time.Time) core.Result {
	r := newResult(core.Survival)
	r.Notes = "Not in first 10 days of the month"
	if ref.Day() > survivalLastDay {
		return r
	}

	startOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	previousMonth := startOfMonth.AddDate(0, -1, 0)

	prevIncome := SumWindow(txs, core.Income, Window{
		Start: previousMonth,
		End:   startOfMonth.Add(-time.Nanosecond),
	})
	earlyExpenses := SumWindow(txs, core.Expense, Window{Start: startOfMonth, End: ref})

	if !prevIncome.IsPositive() {
		r.Notes = "No income data from previous month"
		return r
	}

	ratio := earlyExpenses.Div(prevIncome)
	r.Progress = percent(ratio, 100)
	r.Unlocked = ratio.GreaterThan(survivalThreshold)
	r.Notes = fmt.Sprintf("Early month spending: %s of %s (%d%%)",
		core.FormatMoney(earlyExpenses), core.FormatMoney(prevIncome), r.Progress)
	return r
}
