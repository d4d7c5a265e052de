package modes

import (
	"fmt"
	"time"

	"ledgerline/internal/core"
)

// LockdownEvaluator unlocks when all-time expenses exceed all-time income.
type LockdownEvaluator struct{}

func (LockdownEvaluator) Mode() core.ModeName { return core.Lockdown }

func (LockdownEvaluator) Evaluate(txs []core.Transaction, _ time.Time) core.Result {
	r := newResult(core.Lockdown)
	tot := Totals(txs)

	if tot.Income.IsPositive() {
		r.Progress = percent(tot.Expenses.Div(tot.Income), 100)
	}
	r.Unlocked = tot.Expenses.GreaterThan(tot.Income)
	r.Notes = fmt.Sprintf("Total expenses: %s, Total income: %s",
		core.FormatMoney(tot.Expenses), core.FormatMoney(tot.Income))
	return r
}
