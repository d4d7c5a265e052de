// Package storage persists transactions, mode records and history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ledgerline/internal/core"
	"ledgerline/internal/log"
	"ledgerline/internal/repository"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements repository.Store on a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
	inTx    bool
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions from
	// failing with SQLITE_BUSY under concurrent refreshes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  log.Default(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil && !r.inTx {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	id, err := r.queries.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID = id

	r.logger.DebugContext(ctx, "Transaction saved",
		log.FieldUserID, tx.UserID,
		log.FieldTransactionID, tx.ID,
		log.FieldDirection, string(tx.Direction),
		log.FieldAmount, tx.Amount.String())
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f repository.TransactionFilter) ([]core.Transaction, error) {
	txs, err := r.queries.ListTransactions(ctx, userID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := r.queries.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) GetOrCreateMode(ctx context.Context, rec core.ModeRecord) (core.ModeRecord, bool, error) {
	id, err := r.queries.InsertMode(ctx, rec)
	switch {
	case err == nil:
		rec.ID = id
		return rec, true, nil
	case isNoRows(err):
		existing, err := r.queries.GetMode(ctx, rec.UserID, rec.Name)
		if err != nil {
			return core.ModeRecord{}, false, fmt.Errorf("get mode %s for user %d: %w", rec.Name, rec.UserID, err)
		}
		return existing, false, nil
	default:
		return core.ModeRecord{}, false, fmt.Errorf("insert mode %s for user %d: %w", rec.Name, rec.UserID, err)
	}
}

func (r *SQLiteRepository) SaveMode(ctx context.Context, rec core.ModeRecord) error {
	n, err := r.queries.UpdateMode(ctx, rec)
	if err != nil {
		return fmt.Errorf("update mode %s for user %d: %w", rec.Name, rec.UserID, err)
	}
	if n == 0 {
		return fmt.Errorf("save mode %s for user %d: %w", rec.Name, rec.UserID, repository.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetMode(ctx context.Context, userID int64, name core.ModeName) (core.ModeRecord, error) {
	rec, err := r.queries.GetMode(ctx, userID, name)
	if isNoRows(err) {
		return core.ModeRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return core.ModeRecord{}, fmt.Errorf("get mode %s for user %d: %w", name, userID, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListModes(ctx context.Context, userID int64) ([]core.ModeRecord, error) {
	recs, err := r.queries.ListModes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list modes for user %d: %w", userID, err)
	}
	return recs, nil
}

func (r *SQLiteRepository) AppendHistory(ctx context.Context, ev core.HistoryEvent) (core.HistoryEvent, error) {
	id, err := r.queries.CreateHistoryEvent(ctx, ev)
	if err != nil {
		return core.HistoryEvent{}, fmt.Errorf("append history for user %d: %w", ev.UserID, err)
	}
	ev.ID = id
	return ev, nil
}

func (r *SQLiteRepository) ListHistory(ctx context.Context, userID int64, mode core.ModeName) ([]core.HistoryEvent, error) {
	evs, err := r.queries.ListHistory(ctx, userID, mode)
	if err != nil {
		return nil, fmt.Errorf("list history for user %d: %w", userID, err)
	}
	return evs, nil
}

// InTx runs fn inside a database transaction. Nested calls reuse the outer one.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	scoped := &SQLiteRepository{
		db:      r.db,
		queries: r.queries.WithTx(tx),
		logger:  r.logger,
		inTx:    true,
	}

	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ repository.Store = (*SQLiteRepository)(nil)
