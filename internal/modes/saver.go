package modes

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

const (
	saverWindowDays     = 180
	saverIncomeMultiple = 3
)

// SaverEvaluator unlocks when all-time savings reach three times the average
// monthly income of the last six months.
type SaverEvaluator struct{}

func (SaverEvaluator) Mode() core.ModeName { return core.Saver }

func (SaverEvaluator) Evaluate(txs []core.Transaction, ref time.Time) core.Result {
	r := newResult(core.Saver)
	r.Notes = "Insufficient income data"

	savings := Totals(txs).Savings()

	// Only months that recorded income count towards the average.
	var incomeMonths []decimal.Decimal
	for _, b := range Aggregate(txs, Trailing(ref, saverWindowDays), ref.Location()) {
		if b.Income.IsPositive() {
			incomeMonths = append(incomeMonths, b.Income)
		}
	}
	if len(incomeMonths) == 0 {
		return r
	}

	// Compare savings*n against sum*3 so a non-terminating average cannot
	// push the target past an exactly matching balance.
	n := decimal.NewFromInt(int64(len(incomeMonths)))
	sum := decimal.Sum(incomeMonths[0], incomeMonths[1:]...)
	scaledTarget := sum.Mul(decimal.NewFromInt(saverIncomeMultiple))
	if !scaledTarget.IsPositive() {
		return r
	}
	scaledSavings := savings.Mul(n)
	avg := sum.Div(n)
	target := avg.Mul(decimal.NewFromInt(saverIncomeMultiple))

	r.Unlocked = scaledSavings.GreaterThanOrEqual(scaledTarget)
	r.Progress = percent(scaledSavings.Div(scaledTarget), 100)
	if !r.Unlocked && r.Progress == 100 {
		r.Progress = 99
	}
	r.Notes = fmt.Sprintf("Savings: %s of %s target (3x monthly income of %s)",
		core.FormatMoney(savings), core.FormatMoney(target), core.FormatMoney(avg))
	return r
}
