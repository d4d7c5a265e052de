// Package worker drives mode refreshes from transaction events and a
// periodic sweep over every user.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ledgerline/internal/amqp"
	"ledgerline/internal/core"
	"ledgerline/internal/log"
	"ledgerline/internal/repository"
)

// Refresher is the part of services.ModeService the worker needs.
type Refresher interface {
	Refresh(ctx context.Context, userID int64) ([]core.ModeRecord, error)
	Invalidate(userID int64)
}

// Config holds the worker settings
type Config struct {
	// Interval between sweeps over all users. Zero disables the sweep loop.
	Interval time.Duration
	// Concurrency bounds parallel refreshes during a sweep
	Concurrency int
}

// SweepResult summarizes one pass over all users.
type SweepResult struct {
	Users    int
	Failed   int
	Unlocked int
}

// RefreshWorker refreshes modes per user. Concurrent requests for the same
// user share a single refresh.
type RefreshWorker struct {
	refresher Refresher
	users     repository.UserLister
	config    Config
	logger    *log.Logger
	group     singleflight.Group

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefreshWorker(refresher Refresher, users repository.UserLister, config Config) *RefreshWorker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &RefreshWorker{
		refresher: refresher,
		users:     users,
		config:    config,
		logger:    log.Default(log.ComponentWorker),
	}
}

// HandleTransactionCreated is the AMQP handler for transaction events.
func (w *RefreshWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	w.logger.DebugContext(ctx, "Processing transaction event",
		log.FieldMessageID, msg.ID.String(),
		log.FieldUserID, msg.UserID,
		log.FieldTransactionID, msg.TransactionID)

	w.refresher.Invalidate(msg.UserID)
	_, err := w.RefreshUser(ctx, msg.UserID)
	return err
}

// RefreshUser refreshes userID, joining a refresh already in flight for the
// same user instead of starting another.
func (w *RefreshWorker) RefreshUser(ctx context.Context, userID int64) ([]core.ModeRecord, error) {
	v, err, shared := w.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		return w.refresher.Refresh(ctx, userID)
	})
	if shared {
		w.logger.DebugContext(ctx, "Joined in-flight refresh", log.FieldUserID, userID)
	}
	if err != nil {
		return nil, err
	}
	unlocked, _ := v.([]core.ModeRecord)
	for _, rec := range unlocked {
		w.logger.InfoContext(ctx, "Mode unlocked",
			log.FieldUserID, userID,
			log.FieldMode, rec.Name.String(),
			log.FieldProgress, rec.Progress)
	}
	return unlocked, nil
}

// Sweep refreshes every known user with bounded parallelism. A failing user
// does not stop the others; their errors are joined in the returned error.
func (w *RefreshWorker) Sweep(ctx context.Context) (SweepResult, error) {
	ids, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list users: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	res := SweepResult{Users: len(ids)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)

	for _, id := range ids {
		g.Go(func() error {
			unlocked, err := w.RefreshUser(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("user %d: %w", id, err))
				return nil
			}
			res.Unlocked += len(unlocked)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, errors.Join(errs...)
}

// Start runs a sweep immediately and then every Interval until Stop is called
// or ctx is done. It returns an error if the worker is already running.
func (w *RefreshWorker) Start(ctx context.Context) error {
	if w.config.Interval <= 0 {
		return errors.New("refresh interval must be positive")
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("refresh worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Refresh worker started",
		"interval", w.config.Interval,
		"concurrency", w.config.Concurrency)
	return nil
}

// Stop signals the loop to end and waits for the current sweep to finish.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Refresh worker stopped gracefully")
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Refresh worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.sweepOnce(ctx)
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *RefreshWorker) sweepOnce(ctx context.Context) {
	start := time.Now()
	res, err := w.Sweep(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Sweep finished with errors",
			log.FieldOperation, log.OpSweep,
			log.FieldError, err,
			"users", res.Users,
			"failed", res.Failed)
		return
	}
	w.logger.InfoContext(ctx, "Sweep completed",
		log.FieldOperation, log.OpSweep,
		"users", res.Users,
		"unlocked", res.Unlocked,
		log.FieldDuration, time.Since(start).Milliseconds())
}
