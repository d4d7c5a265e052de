package modes

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

const (
	stabilityWindowDays = 120
	stabilityMonths     = 4
	// Progress while fewer than stabilityMonths months have data never reaches
	// completion.
	stabilityPartialCap = 75
)

var stabilityTolerance = decimal.RequireFromString("0.1")

// StabilityEvaluator unlocks when at least four months in the last 120 days
// keep their expense/income ratio within 10% of the average ratio.
type StabilityEvaluator struct{}

func (StabilityEvaluator) Mode() core.ModeName { return core.Stability }

func (StabilityEvaluator) Evaluate(txs []core.Transaction, ref time.Time) core.Result {
	r := newResult(core.Stability)
	buckets := Aggregate(txs, Trailing(ref, stabilityWindowDays), ref.Location())

	var ratios []decimal.Decimal
	var details []string
	for _, b := range buckets {
		if !b.Income.IsPositive() || !b.Expenses.IsPositive() {
			continue
		}
		ratio := b.Expenses.Div(b.Income)
		ratios = append(ratios, ratio)
		details = append(details, fmt.Sprintf("%s: %s%%", b.MonthKey, pct(ratio)))
	}
	detail := strings.Join(details, " | ")

	if len(ratios) < stabilityMonths {
		r.Progress = countPercent(len(ratios), stabilityMonths, stabilityPartialCap)
		r.Notes = fmt.Sprintf("Months with data: %d/%d needed. %s", len(ratios), stabilityMonths, detail)
		return r
	}

	// The mean covers every qualifying month in the window, not only the last four.
	mean := decimal.Sum(ratios[0], ratios[1:]...).Div(decimal.NewFromInt(int64(len(ratios))))
	consistent := 0
	for _, ratio := range ratios {
		if ratio.Sub(mean).Abs().Div(mean).LessThanOrEqual(stabilityTolerance) {
			consistent++
		}
	}

	r.Unlocked = consistent >= stabilityMonths
	r.Progress = countPercent(consistent, stabilityMonths, 100)
	r.Notes = fmt.Sprintf("Consistent months: %d/%d needed. Average ratio: %s%%. %s",
		consistent, stabilityMonths, pct(mean), detail)
	return r
}

// pct renders a ratio as a whole percentage.
func pct(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).Round(0).String()
}
