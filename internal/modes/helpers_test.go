package modes

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

func at(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &d
}

func income(amount string, date *time.Time) core.Transaction {
	return core.Transaction{UserID: 1, Amount: decimal.RequireFromString(amount), Direction: core.Income, Date: date}
}

func expense(amount string, date *time.Time) core.Transaction {
	return core.Transaction{UserID: 1, Amount: decimal.RequireFromString(amount), Direction: core.Expense, Date: date}
}
