package core

import "github.com/shopspring/decimal"

// Totals holds income and expense sums over some set of transactions.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Add folds a transaction into the totals.
func (t *Totals) Add(tx Transaction) {
	switch tx.Direction {
	case Income:
		t.Income = t.Income.Add(tx.Amount)
	case Expense:
		t.Expenses = t.Expenses.Add(tx.Amount)
	}
}

// Savings is income minus expenses and may be negative.
func (t Totals) Savings() decimal.Decimal {
	return t.Income.Sub(t.Expenses)
}
