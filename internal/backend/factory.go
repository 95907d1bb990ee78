// Package backend builds the transaction service from configuration.
package backend

import (
	"context"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/store/memory"
	"budget/internal/store/sqlite"
)

// Result holds the ready service. Cleanup releases the store and publisher.
type Result struct {
	Service *services.TransactionService
	Cleanup func() error
}

// PublisherDialer opens a change-event publisher.
type PublisherDialer func(url, exchange, queue string, logger *applog.Logger) (services.EventPublisher, error)

func dialAMQP(url, exchange, queue string, logger *applog.Logger) (services.EventPublisher, error) {
	c, err := amqp.NewClient(url, exchange, queue, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type Factory struct {
	logger *applog.Logger
	dial   PublisherDialer
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend), dial: dialAMQP}
}

// WithDialer replaces the AMQP dialer.
func (f *Factory) WithDialer(d PublisherDialer) *Factory {
	f.dial = d
	return f
}

// CreateStore opens the configured store, seeded when asked.
func (f *Factory) CreateStore(ctx context.Context, cfg Config) (store.TransactionStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var seed []core.Transaction
	if cfg.SeedSamples {
		seed = core.SampleTransactions()
	}

	switch cfg.Type {
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend", "seeded", len(seed))
		return memory.NewSeeded(seed), nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBName, nil)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		if len(seed) > 0 {
			if err := repo.Seed(ctx, seed); err != nil {
				repo.Close()
				return nil, fmt.Errorf("seed SQLite repository: %w", err)
			}
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "database", cfg.SQLiteDBName, "seeded", len(seed))
		return repo, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
}

// CreateService builds the store and, when configured, the AMQP publisher.
// A broker that cannot be reached is logged and the service runs without events.
func (f *Factory) CreateService(ctx context.Context, cfg Config) (*Result, error) {
	st, err := f.CreateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithLogger(f.logger)}
	if cfg.AMQPURL != "" {
		pub, err := f.dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			opts = append(opts, services.WithPublisher(pub))
		}
	}

	svc := services.NewTransactionService(st, opts...)
	return &Result{Service: svc, Cleanup: svc.Close}, nil
}
