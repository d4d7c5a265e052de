package modes

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

const (
	vacayWindowDays = 90
	vacayMonths     = 3
)

var vacayMinRate = decimal.RequireFromString("0.15")

// VacayEvaluator unlocks after three months in the last 90 days that each kept
// at least 15% of income.
type VacayEvaluator struct{}

func (VacayEvaluator) Mode() core.ModeName { return core.Vacay }

func (VacayEvaluator) Evaluate(txs []core.Transaction, ref time.Time) core.Result {
	r := newResult(core.Vacay)
	buckets := Aggregate(txs, Trailing(ref, vacayWindowDays), ref.Location())

	qualifying := 0
	var details []string
	for _, b := range buckets {
		rate, ok := b.SavingsRate()
		if !ok {
			continue
		}
		details = append(details, fmt.Sprintf("%s: %s%% savings rate",
			b.MonthKey, rate.Mul(decimal.NewFromInt(100)).Round(1).String()))
		if rate.GreaterThanOrEqual(vacayMinRate) {
			qualifying++
		}
	}

	if len(buckets) > 0 {
		r.Progress = countPercent(qualifying, vacayMonths, 100)
	}
	r.Unlocked = qualifying >= vacayMonths

	summary := "No monthly data available yet"
	if len(details) > 0 {
		summary = strings.Join(details, " | ")
	}
	r.Notes = fmt.Sprintf("Months with 15%%+ savings: %d/%d needed. %s", qualifying, vacayMonths, summary)
	return r
}
