package services

import (
	"context"
	"fmt"

	"ledgerline/internal/core"
	"ledgerline/internal/log"
	"ledgerline/internal/repository"
)

// EventPublisher announces new transactions to whoever refreshes modes.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, userID, transactionID int64) error
}

// TransactionService records transactions and triggers a mode refresh, either
// through the event bus or inline when no publisher is configured.
type TransactionService struct {
	store     repository.TransactionWriter
	publisher EventPublisher
	modes     *ModeService
	logger    *log.Logger
}

// NewTransactionService wires the intake path. A nil logger falls back to the
// default intake logger.
func NewTransactionService(store repository.TransactionWriter, publisher EventPublisher, modes *ModeService, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Default(log.ComponentIntake)
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		modes:     modes,
		logger:    logger,
	}
}

// AddTransaction saves tx and returns it with its ID. Modes newly unlocked by
// an inline refresh are returned too; with a publisher they are always empty.
func (s *TransactionService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, []core.ModeRecord, error) {
	saved, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("save transaction: %w", err)
	}
	if s.modes != nil {
		s.modes.Invalidate(saved.UserID)
	}

	if s.publisher != nil {
		err := s.publisher.PublishTransactionCreated(ctx, saved.UserID, saved.ID)
		if err == nil {
			return saved, nil, nil
		}
		// The transaction is stored; fall back to refreshing here.
		s.logger.WarnContext(ctx, "Failed to publish transaction event, refreshing inline",
			log.FieldUserID, saved.UserID,
			log.FieldTransactionID, saved.ID,
			log.FieldError, err)
	}

	if s.modes == nil {
		return saved, nil, nil
	}
	unlocked, err := s.modes.Refresh(ctx, saved.UserID)
	if err != nil {
		return saved, nil, err
	}
	return saved, unlocked, nil
}
