package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ledgerline/internal/core"
	"ledgerline/internal/repository"
)

type modeKey struct {
	user int64
	name core.ModeName
}

// Store keeps everything in process memory. It is safe for concurrent use.
type Store struct {
	txMu sync.Mutex // serializes InTx callers

	mu      sync.Mutex
	txs     []core.Transaction
	modes   map[modeKey]core.ModeRecord
	history []core.HistoryEvent
	nextID  int64
}

func New() *Store {
	return &Store{modes: make(map[modeKey]core.ModeRecord)}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddTransaction validates and stores tx, assigning an ID.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64, f repository.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bounded := !f.From.IsZero() || !f.To.IsZero()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if bounded {
			if !tx.HasDate() {
				continue
			}
			if !f.From.IsZero() && tx.Date.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && tx.Date.After(f.To) {
				continue
			}
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]struct{}{}
	var ids []int64
	for _, tx := range s.txs {
		if _, ok := seen[tx.UserID]; ok {
			continue
		}
		seen[tx.UserID] = struct{}{}
		ids = append(ids, tx.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) GetOrCreateMode(_ context.Context, rec core.ModeRecord) (core.ModeRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := modeKey{rec.UserID, rec.Name}
	if existing, ok := s.modes[key]; ok {
		return existing, false, nil
	}
	rec.ID = s.id()
	s.modes[key] = rec
	return rec, true, nil
}

func (s *Store) SaveMode(_ context.Context, rec core.ModeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := modeKey{rec.UserID, rec.Name}
	if _, ok := s.modes[key]; !ok {
		return fmt.Errorf("save mode %s for user %d: %w", rec.Name, rec.UserID, repository.ErrNotFound)
	}
	s.modes[key] = rec
	return nil
}

func (s *Store) GetMode(_ context.Context, userID int64, name core.ModeName) (core.ModeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.modes[modeKey{userID, name}]
	if !ok {
		return core.ModeRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (s *Store) ListModes(_ context.Context, userID int64) ([]core.ModeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ModeRecord
	for k, rec := range s.modes {
		if k.user == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AppendHistory(_ context.Context, ev core.HistoryEvent) (core.HistoryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.id()
	s.history = append(s.history, ev)
	return ev, nil
}

func (s *Store) ListHistory(_ context.Context, userID int64, mode core.ModeName) ([]core.HistoryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.HistoryEvent
	for _, ev := range s.history {
		if ev.UserID != userID || (mode != "" && ev.Mode != mode) {
			continue
		}
		out = append(out, ev)
	}
	// newest first; equal timestamps keep the later append first
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// InTx serializes fn against other InTx callers. Writes made before an error
// are not rolled back.
func (s *Store) InTx(_ context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

var _ repository.Store = (*Store)(nil)
