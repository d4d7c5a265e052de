package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Timestamps are stored as fixed width UTC text so that string comparison
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const createTransaction = `
INSERT INTO transactions (user_id, amount, direction, txn_date, category_id, description)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	var categoryID sql.NullInt64
	if tx.CategoryID != nil {
		categoryID = sql.NullInt64{Int64: *tx.CategoryID, Valid: true}
	}
	var id int64
	err := q.db.QueryRowContext(ctx, createTransaction,
		tx.UserID,
		tx.Amount.String(),
		string(tx.Direction),
		nullTime(tx.Date),
		categoryID,
		tx.Description,
	).Scan(&id)
	return id, err
}

const listTransactionsBase = `
SELECT id, user_id, amount, direction, txn_date, category_id, description
FROM transactions
WHERE user_id = ?`

func (q *Queries) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	query := listTransactionsBase
	args := []any{userID}
	if !from.IsZero() || !to.IsZero() {
		query += ` AND txn_date IS NOT NULL`
	}
	if !from.IsZero() {
		query += ` AND txn_date >= ?`
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		query += ` AND txn_date <= ?`
		args = append(args, formatTime(to))
	}
	query += ` ORDER BY id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			amount     string
			direction  string
			date       sql.NullString
			categoryID sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &amount, &direction, &date, &categoryID, &t.Description); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %d amount %q: %w", t.ID, amount, err)
		}
		t.Direction = core.Direction(direction)
		if t.Date, err = timePtr(date); err != nil {
			return nil, fmt.Errorf("transaction %d date: %w", t.ID, err)
		}
		if categoryID.Valid {
			id := categoryID.Int64
			t.CategoryID = &id
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const listUserIDs = `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`

func (q *Queries) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const modeColumns = `id, user_id, name, description, icon, is_unlocked, progress, triggered_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMode(row rowScanner) (core.ModeRecord, error) {
	var (
		rec       core.ModeRecord
		name      string
		triggered sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &name, &rec.Description, &rec.Icon, &rec.IsUnlocked, &rec.Progress, &triggered); err != nil {
		return core.ModeRecord{}, err
	}
	rec.Name = core.ModeName(name)
	t, err := timePtr(triggered)
	if err != nil {
		return core.ModeRecord{}, fmt.Errorf("mode %d triggered_on: %w", rec.ID, err)
	}
	rec.TriggeredOn = t
	return rec, nil
}

const getMode = `SELECT ` + modeColumns + ` FROM mode_records WHERE user_id = ? AND name = ?`

func (q *Queries) GetMode(ctx context.Context, userID int64, name core.ModeName) (core.ModeRecord, error) {
	return scanMode(q.db.QueryRowContext(ctx, getMode, userID, string(name)))
}

const insertMode = `
INSERT INTO mode_records (user_id, name, description, icon, is_unlocked, progress, triggered_on)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, name) DO NOTHING
RETURNING id`

// InsertMode returns sql.ErrNoRows when the (user, name) pair already exists.
func (q *Queries) InsertMode(ctx context.Context, rec core.ModeRecord) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertMode,
		rec.UserID, string(rec.Name), rec.Description, rec.Icon,
		rec.IsUnlocked, rec.Progress, nullTime(rec.TriggeredOn),
	).Scan(&id)
	return id, err
}

const updateMode = `
UPDATE mode_records
SET description = ?, icon = ?, is_unlocked = ?, progress = ?, triggered_on = ?
WHERE user_id = ? AND name = ?`

func (q *Queries) UpdateMode(ctx context.Context, rec core.ModeRecord) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateMode,
		rec.Description, rec.Icon, rec.IsUnlocked, rec.Progress, nullTime(rec.TriggeredOn),
		rec.UserID, string(rec.Name),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listModes = `SELECT ` + modeColumns + ` FROM mode_records WHERE user_id = ? ORDER BY id`

func (q *Queries) ListModes(ctx context.Context, userID int64) ([]core.ModeRecord, error) {
	rows, err := q.db.QueryContext(ctx, listModes, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.ModeRecord
	for rows.Next() {
		rec, err := scanMode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

const createHistoryEvent = `
INSERT INTO history_events (user_id, mode, status_change, progress, ts, details)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateHistoryEvent(ctx context.Context, ev core.HistoryEvent) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createHistoryEvent,
		ev.UserID, string(ev.Mode), string(ev.StatusChange), ev.Progress, formatTime(ev.Timestamp), ev.Details,
	).Scan(&id)
	return id, err
}

const listHistory = `
SELECT id, user_id, mode, status_change, progress, ts, details
FROM history_events
WHERE user_id = ? AND (? = '' OR mode = ?)
ORDER BY ts DESC, id DESC`

func (q *Queries) ListHistory(ctx context.Context, userID int64, mode core.ModeName) ([]core.HistoryEvent, error) {
	rows, err := q.db.QueryContext(ctx, listHistory, userID, string(mode), string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.HistoryEvent
	for rows.Next() {
		var (
			ev         core.HistoryEvent
			name       string
			status, ts string
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &name, &status, &ev.Progress, &ts, &ev.Details); err != nil {
			return nil, err
		}
		ev.Mode = core.ModeName(name)
		ev.StatusChange = core.StatusChange(status)
		if ev.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("history event %d timestamp: %w", ev.ID, err)
		}
		items = append(items, ev)
	}
	return items, rows.Err()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
