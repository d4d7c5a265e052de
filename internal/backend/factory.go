// Package backend assembles the store, event bus and services from configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerline/internal/amqp"
	"ledgerline/internal/cache"
	"ledgerline/internal/config"
	"ledgerline/internal/log"
	"ledgerline/internal/repository"
	"ledgerline/internal/repository/memory"
	"ledgerline/internal/services"
	"ledgerline/internal/storage"
)

// CleanupFunc releases resources held by a Backend
type CleanupFunc func() error

// Backend holds everything a binary needs to run the engine.
type Backend struct {
	Store        repository.Store
	AMQP         *amqp.Client // nil when AMQP_URL is empty or the broker is unreachable
	Modes        *services.ModeService
	Transactions *services.TransactionService
	Caches       *cache.Manager
	Cleanup      CleanupFunc
}

// Options tweak backend creation
type Options struct {
	// RequireAMQP makes a broker connection failure fatal instead of a warning.
	RequireAMQP bool
	// Clock overrides the time source of the mode service.
	Clock func() time.Time
}

// New builds a Backend for cfg. Callers must invoke Cleanup when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Backend, error) {
	logger := log.Default(log.ComponentApp)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Initialized store", "backend", cfg.DataBackend)

	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			if opts.RequireAMQP {
				_ = closeStore()
				return nil, fmt.Errorf("initialize AMQP client: %w", err)
			}
			logger.WarnContext(ctx, "Failed to initialize AMQP client, refreshing inline", log.FieldError, err)
			client = nil
		} else {
			logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				log.FieldQueue, cfg.AMQPQueue)
		}
	}

	results := cache.NewLRU[int64, services.Evaluation](cfg.ResultCacheSize, cfg.ResultCacheTTL)
	manager := cache.NewManager()
	manager.Register(results)

	svcOpts := []services.Option{
		services.WithLocation(cfg.Location()),
		services.WithResultCache(results),
		services.WithLogger(log.Default(log.ComponentReconciler)),
	}
	if opts.Clock != nil {
		svcOpts = append(svcOpts, services.WithClock(opts.Clock))
	}
	modes := services.NewModeService(store, svcOpts...)

	// a nil *amqp.Client must not become a non-nil interface
	var publisher services.EventPublisher
	if client != nil {
		publisher = client
	}

	b := &Backend{
		Store:        store,
		AMQP:         client,
		Modes:        modes,
		Transactions: services.NewTransactionService(store, publisher, modes, log.Default(log.ComponentIntake)),
		Caches:       manager,
	}
	b.Cleanup = func() error {
		manager.Stop()
		var errs []error
		if client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		return errors.Join(errs...)
	}
	return b, nil
}

func openStore(cfg *config.Config) (repository.Store, CleanupFunc, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		return repo, repo.Close, nil
	case config.BackendMemory:
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
