package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Direction = "INCOME"
	Expense Direction = "EXPENSE"
)

const (
	StatusUnlocked StatusChange = "unlocked"
	StatusLocked   StatusChange = "locked"
	StatusProgress StatusChange = "progress"
)

type (
	// Direction tells whether a transaction adds to or draws from the user's money.
	Direction string

	// StatusChange classifies a history event.
	StatusChange string

	Transaction struct {
		ID          int64
		UserID      int64
		Amount      decimal.Decimal // always >= 0, sign comes from Direction
		Direction   Direction
		Date        *time.Time // nil for legacy rows without a date
		CategoryID  *int64
		Description string
	}

	// ModeRecord is the persisted unlock state of one mode for one user.
	ModeRecord struct {
		ID          int64
		UserID      int64
		Name        ModeName
		Description string
		Icon        string
		IsUnlocked  bool
		Progress    int
		TriggeredOn *time.Time
	}

	// HistoryEvent is an append-only record of a detected change.
	HistoryEvent struct {
		ID           int64
		UserID       int64
		Mode         ModeName
		StatusChange StatusChange
		Progress     int
		Timestamp    time.Time
		Details      string
	}

	// Result is what a mode evaluator returns for one user.
	Result struct {
		Mode        ModeName
		Name        string
		Description string
		Icon        string
		Unlocked    bool
		Progress    int
		Notes       string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidUser      = errors.New("invalid user")
)

func (d Direction) IsValid() bool {
	return d == Income || d == Expense
}

// ParseDirection accepts INCOME/EXPENSE in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDirection
	}
	return d, nil
}

func (s StatusChange) IsValid() bool {
	switch s {
	case StatusUnlocked, StatusLocked, StatusProgress:
		return true
	}
	return false
}

// HasDate reports whether the transaction can take part in windowed aggregation.
func (t Transaction) HasDate() bool {
	return t.Date != nil && !t.Date.IsZero()
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUser
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// ResultFor builds a record from a fresh evaluation, used when a mode is seen
// for the first time.
func ResultFor(userID int64, r Result, now time.Time) ModeRecord {
	rec := ModeRecord{
		UserID:      userID,
		Name:        r.Mode,
		Description: r.Description,
		Icon:        r.Icon,
		IsUnlocked:  r.Unlocked,
		Progress:    r.Progress,
	}
	if r.Unlocked {
		ts := now
		rec.TriggeredOn = &ts
	}
	return rec
}
