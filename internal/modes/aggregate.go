// Package modes evaluates a user's transactions against the five financial
// mode rules.
//
// All evaluators read the reference time they are given instead of the wall
// clock, and share the month bucketing in this file.
package modes

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

// Window is an inclusive date range. A zero Start or End leaves that side open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Trailing returns the window covering the `days` days before ref, up to ref.
func Trailing(ref time.Time, days int) Window {
	return Window{Start: ref.AddDate(0, 0, -days), End: ref}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%d-%d", k.Year, int(k.Month))
}

func (k MonthKey) before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// MonthBucket holds the totals of one calendar month.
type MonthBucket struct {
	MonthKey
	core.Totals
}

// SavingsRate is (income - expenses) / income, ok is false without income.
func (b MonthBucket) SavingsRate() (decimal.Decimal, bool) {
	if !b.Income.IsPositive() {
		return decimal.Zero, false
	}
	return b.Income.Sub(b.Expenses).Div(b.Income), true
}

// Aggregate groups the dated transactions inside w by calendar month in loc.
// Transactions without a date are skipped. Buckets come back oldest first.
func Aggregate(txs []core.Transaction, w Window, loc *time.Location) []MonthBucket {
	if loc == nil {
		loc = time.UTC
	}
	byMonth := make(map[MonthKey]*MonthBucket)
	for _, tx := range txs {
		if !tx.HasDate() {
			continue
		}
		d := tx.Date.In(loc)
		if !w.Contains(d) {
			continue
		}
		key := MonthKey{Year: d.Year(), Month: d.Month()}
		b, ok := byMonth[key]
		if !ok {
			b = &MonthBucket{MonthKey: key}
			byMonth[key] = b
		}
		b.Add(tx)
	}

	buckets := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].MonthKey.before(buckets[j].MonthKey)
	})
	return buckets
}

// Totals sums every transaction regardless of date.
func Totals(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		t.Add(tx)
	}
	return t
}

// SumWindow sums the dated transactions of one direction inside w.
func SumWindow(txs []core.Transaction, dir core.Direction, w Window) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Direction != dir || !tx.HasDate() {
			continue
		}
		if w.Contains(*tx.Date) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// percent floors ratio*100 and clamps it to [0, limit].
func percent(ratio decimal.Decimal, limit int) int {
	p := ratio.Mul(decimal.NewFromInt(100)).Floor()
	if p.IsNegative() {
		return 0
	}
	if p.GreaterThan(decimal.NewFromInt(int64(limit))) {
		return limit
	}
	return int(p.IntPart())
}

// countPercent is floor(count/of*100) clamped to [0, limit].
func countPercent(count, of, limit int) int {
	if of <= 0 || count <= 0 {
		return 0
	}
	return min(limit, count*100/of)
}
