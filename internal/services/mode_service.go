// Package services reconciles evaluated mode results with persisted state.
package services

import (
	"context"
	"fmt"
	"time"

	"ledgerline/internal/cache"
	"ledgerline/internal/core"
	"ledgerline/internal/log"
	"ledgerline/internal/modes"
	"ledgerline/internal/repository"
)

// Evaluation is one run of every evaluator for a user.
type Evaluation struct {
	UserID  int64
	Ref     time.Time
	Results []core.Result
}

// Result returns the entry for name, ok is false when it is missing.
func (e Evaluation) Result(name core.ModeName) (core.Result, bool) {
	for _, r := range e.Results {
		if r.Mode == name {
			return r, true
		}
	}
	return core.Result{}, false
}

// ModeService runs the evaluators and keeps mode records and history in sync.
type ModeService struct {
	store  repository.Store
	now    func() time.Time
	loc    *time.Location
	cache  cache.Cache[int64, Evaluation]
	logger *log.ModeLogger
}

// Option configures a ModeService.
type Option func(*ModeService)

// WithClock sets the time source used when no reference time is given.
func WithClock(now func() time.Time) Option {
	return func(s *ModeService) { s.now = now }
}

// WithLocation sets the time zone month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *ModeService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithResultCache keeps the latest evaluation per user.
func WithResultCache(c cache.Cache[int64, Evaluation]) Option {
	return func(s *ModeService) { s.cache = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ModeService) { s.logger = log.NewModeLogger(l) }
}

func NewModeService(store repository.Store, opts ...Option) *ModeService {
	s := &ModeService{
		store:  store,
		now:    time.Now,
		loc:    time.UTC,
		logger: log.NewModeLogger(log.Default(log.ComponentReconciler)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reconciles userID's modes as of the service clock.
func (s *ModeService) Refresh(ctx context.Context, userID int64) ([]core.ModeRecord, error) {
	return s.refresh(ctx, userID, s.now(), true)
}

// RefreshAt evaluates every mode as of ref, persists the differences with
// their history events and returns the records that became unlocked in this
// call. The whole read-compare-write runs in one store transaction.
// Evaluations at an explicit ref are never cached.
func (s *ModeService) RefreshAt(ctx context.Context, userID int64, ref time.Time) ([]core.ModeRecord, error) {
	return s.refresh(ctx, userID, ref, false)
}

func (s *ModeService) refresh(ctx context.Context, userID int64, ref time.Time, cacheResult bool) ([]core.ModeRecord, error) {
	if userID <= 0 {
		return nil, core.ErrInvalidUser
	}
	start := time.Now()
	ref = ref.In(s.loc)

	var (
		newlyUnlocked []core.ModeRecord
		events        int
		txCount       int
		eval          Evaluation
	)
	err := s.store.InTx(ctx, func(st repository.Store) error {
		newlyUnlocked, events = nil, 0

		txs, err := st.ListTransactions(ctx, userID, repository.TransactionFilter{})
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		txCount = len(txs)
		eval = Evaluation{UserID: userID, Ref: ref, Results: modes.EvaluateAll(txs, ref)}

		for _, res := range eval.Results {
			rec, n, unlocked, err := s.reconcile(ctx, st, userID, res, ref)
			if err != nil {
				return err
			}
			events += n
			if unlocked {
				newlyUnlocked = append(newlyUnlocked, rec)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.LogError(ctx, "Refresh failed", err, log.OpRefresh, log.NewFields().WithUser(userID))
		return nil, fmt.Errorf("refresh modes for user %d: %w", userID, err)
	}

	if cacheResult && s.cache != nil {
		s.cache.Set(userID, eval)
	}

	names := make([]string, 0, len(newlyUnlocked))
	for _, rec := range newlyUnlocked {
		names = append(names, rec.Name.String())
	}
	s.logger.LogRefresh(ctx, userID, txCount, events, names, time.Since(start).Milliseconds())

	return newlyUnlocked, nil
}

// reconcile applies one fresh result to the stored record. It returns the
// record, the number of history events written and whether the mode became
// unlocked.
func (s *ModeService) reconcile(ctx context.Context, st repository.Store, userID int64, res core.Result, ref time.Time) (core.ModeRecord, int, bool, error) {
	rec, created, err := st.GetOrCreateMode(ctx, core.ResultFor(userID, res, ref))
	if err != nil {
		return core.ModeRecord{}, 0, false, fmt.Errorf("upsert mode %s: %w", res.Mode, err)
	}

	if created {
		if !res.Unlocked {
			return rec, 0, false, nil
		}
		if err := s.appendEvent(ctx, st, userID, res, core.StatusUnlocked, ref); err != nil {
			return core.ModeRecord{}, 0, false, err
		}
		s.logger.LogTransition(ctx, userID, res.Mode.String(), string(core.StatusUnlocked), 0, res.Progress)
		return rec, 1, true, nil
	}

	events := 0
	dirty := rec.Description != res.Description || rec.Icon != res.Icon
	rec.Description = res.Description
	rec.Icon = res.Icon

	if rec.Progress != res.Progress {
		if err := s.appendEvent(ctx, st, userID, res, core.StatusProgress, ref); err != nil {
			return core.ModeRecord{}, 0, false, err
		}
		s.logger.LogTransition(ctx, userID, res.Mode.String(), string(core.StatusProgress), rec.Progress, res.Progress)
		rec.Progress = res.Progress
		events++
		dirty = true
	}

	becameUnlocked := false
	if rec.IsUnlocked != res.Unlocked {
		change := core.StatusLocked
		if res.Unlocked {
			change = core.StatusUnlocked
		}
		if err := s.appendEvent(ctx, st, userID, res, change, ref); err != nil {
			return core.ModeRecord{}, 0, false, err
		}
		s.logger.LogTransition(ctx, userID, res.Mode.String(), string(change), rec.Progress, res.Progress)
		rec.IsUnlocked = res.Unlocked
		if res.Unlocked {
			ts := ref
			rec.TriggeredOn = &ts
			becameUnlocked = true
		}
		events++
		dirty = true
	}

	if dirty {
		if err := st.SaveMode(ctx, rec); err != nil {
			return core.ModeRecord{}, 0, false, fmt.Errorf("save mode %s: %w", res.Mode, err)
		}
	}
	return rec, events, becameUnlocked, nil
}

func (s *ModeService) appendEvent(ctx context.Context, st repository.Store, userID int64, res core.Result, change core.StatusChange, ref time.Time) error {
	_, err := st.AppendHistory(ctx, core.HistoryEvent{
		UserID:       userID,
		Mode:         res.Mode,
		StatusChange: change,
		Progress:     res.Progress,
		Timestamp:    ref,
		Details:      res.Notes,
	})
	if err != nil {
		return fmt.Errorf("append %s event for %s: %w", change, res.Mode, err)
	}
	return nil
}

// Evaluate runs every evaluator for userID as of the service clock without
// persisting anything. The result is cached until the user's next transaction.
func (s *ModeService) Evaluate(ctx context.Context, userID int64) (Evaluation, error) {
	eval, err := s.EvaluateAt(ctx, userID, s.now())
	if err != nil {
		return Evaluation{}, err
	}
	if s.cache != nil {
		s.cache.Set(userID, eval)
	}
	return eval, nil
}

// EvaluateAt is Evaluate at an explicit reference time. It bypasses the cache.
func (s *ModeService) EvaluateAt(ctx context.Context, userID int64, ref time.Time) (Evaluation, error) {
	txs, err := s.store.ListTransactions(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return Evaluation{}, fmt.Errorf("fetch transactions for user %d: %w", userID, err)
	}
	ref = ref.In(s.loc)
	return Evaluation{UserID: userID, Ref: ref, Results: modes.EvaluateAll(txs, ref)}, nil
}

// Status returns every stored mode record of userID.
func (s *ModeService) Status(ctx context.Context, userID int64) ([]core.ModeRecord, error) {
	recs, err := s.store.ListModes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list modes for user %d: %w", userID, err)
	}
	return recs, nil
}

// Invalidate drops the cached evaluation of userID.
func (s *ModeService) Invalidate(userID int64) {
	if s.cache != nil {
		s.cache.Delete(userID)
	}
}

func (s *ModeService) cachedEvaluation(ctx context.Context, userID int64) (Evaluation, error) {
	if s.cache != nil {
		if eval, ok := s.cache.Get(userID); ok {
			return eval, nil
		}
	}
	return s.Evaluate(ctx, userID)
}
