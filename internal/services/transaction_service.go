package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/store"
)

// EventPublisher receives a change event after each successful mutation.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.TransactionEvent) error
	Close() error
}

// TransactionService is the single entry point to the store. It bumps a
// revision counter on every mutation and forwards change events to an
// optional publisher.
type TransactionService struct {
	store     store.TransactionStore
	publisher EventPublisher
	now       func() time.Time
	revision  atomic.Uint64
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// Option configures a TransactionService.
type Option func(*TransactionService)

// WithPublisher enables change events.
func WithPublisher(p EventPublisher) Option {
	return func(s *TransactionService) { s.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *TransactionService) { s.logger = l }
}

// WithClock sets the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

func NewTransactionService(st store.TransactionStore, opts ...Option) *TransactionService {
	s := &TransactionService{store: st, now: time.Now, logger: applog.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentTransaction)
	s.events = applog.NewStructuredLogger(s.logger)
	return s
}

// Revision changes whenever the stored list may have changed.
func (s *TransactionService) Revision() uint64 {
	return s.revision.Load()
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := s.store.Insert(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.revision.Add(1)
	s.events.LogTransaction(ctx, applog.OpCreate, tx.ID, tx.Text, tx.Amount, tx.Category, tx.Date)
	s.publish(ctx, amqp.NewCreatedEvent(tx, s.now()))
	return tx, nil
}

// Update returns an error wrapping core.ErrNotFound for unknown ids.
func (s *TransactionService) Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	tx, err := s.store.Update(ctx, id, in)
	if err != nil {
		return core.Transaction{}, err
	}
	s.revision.Add(1)
	s.events.LogTransaction(ctx, applog.OpUpdate, tx.ID, tx.Text, tx.Amount, tx.Category, tx.Date)
	s.publish(ctx, amqp.NewUpdatedEvent(tx, s.now()))
	return tx, nil
}

// Delete succeeds whether or not id exists.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	rev := s.revision.Add(1)
	s.logger.InfoContext(ctx, "Transaction delete succeeded", applog.FieldTxID, id, applog.FieldRevision, rev)
	s.publish(ctx, amqp.NewDeletedEvent(id, s.now()))
	return nil
}

// Summary aggregates the current list.
func (s *TransactionService) Summary(ctx context.Context) (core.Summary, error) {
	list, err := s.List(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(list), nil
}

// Ping reports whether the store answers.
func (s *TransactionService) Ping(ctx context.Context) error {
	_, err := s.store.List(ctx)
	return err
}

// publish never fails the caller; the mutation is already stored.
func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventType, ev.Type,
			applog.FieldTxID, ev.ID,
			applog.FieldError, err)
	}
}

// Close closes the store and the publisher.
func (s *TransactionService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close transaction service: %w", err)
	}
	return nil
}
