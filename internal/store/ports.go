package store

import (
	"context"
	"time"

	"budget/internal/core"
)

// Ports for transaction storage backends.
type (
	// TransactionStore is the authoritative holder of transactions and the
	// only component that assigns ids.
	TransactionStore interface {
		// List returns every record in insertion order.
		List(ctx context.Context) ([]core.Transaction, error)
		// Insert assigns the next id, defaults an empty date to today and appends.
		Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		// Update replaces all fields but the id. Returns core.ErrNotFound for unknown ids.
		Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
		// Delete removes the record with id. Unknown ids are not an error.
		Delete(ctx context.Context, id int64) error
		Close() error
	}

	// Clock returns the current time; stores use it for default dates.
	Clock func() time.Time
)
