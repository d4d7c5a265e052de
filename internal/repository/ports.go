// Package repository declares the storage ports the mode engine depends on.
package repository

import (
	"context"
	"errors"
	"time"

	"ledgerline/internal/core"
)

// ErrNotFound is returned by lookups that find no row.
var ErrNotFound = errors.New("not found")

// TransactionFilter narrows ListTransactions. Zero values mean no bound.
// Undated transactions are returned only when no date bound is set.
type TransactionFilter struct {
	From time.Time
	To   time.Time
}

// Ports for the engine's collaborators.
type (
	TransactionReader interface {
		ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	}

	// ModeStore keeps one ModeRecord per (user, mode).
	ModeStore interface {
		// GetOrCreateMode returns the stored record for rec.UserID/rec.Name, or
		// inserts rec and reports created=true.
		GetOrCreateMode(ctx context.Context, rec core.ModeRecord) (stored core.ModeRecord, created bool, err error)
		SaveMode(ctx context.Context, rec core.ModeRecord) error
		GetMode(ctx context.Context, userID int64, name core.ModeName) (core.ModeRecord, error)
		ListModes(ctx context.Context, userID int64) ([]core.ModeRecord, error)
	}

	// HistoryStore is append-only.
	HistoryStore interface {
		AppendHistory(ctx context.Context, ev core.HistoryEvent) (core.HistoryEvent, error)
		// ListHistory returns events newest first. An empty mode returns all modes.
		ListHistory(ctx context.Context, userID int64, mode core.ModeName) ([]core.HistoryEvent, error)
	}

	UserLister interface {
		// ListUserIDs returns every user that owns at least one transaction.
		ListUserIDs(ctx context.Context) ([]int64, error)
	}

	Store interface {
		TransactionReader
		TransactionWriter
		ModeStore
		HistoryStore
		UserLister
		// InTx runs fn against a Store whose writes commit together, or not at all
		// when fn returns an error.
		InTx(ctx context.Context, fn func(Store) error) error
	}
)
