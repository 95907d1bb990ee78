package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/store"
)

var _ store.TransactionStore = (*Store)(nil)

// Store keeps transactions in an ordered slice. All operations hold the
// mutex, so id assignment and mutations never interleave.
type Store struct {
	mu    sync.Mutex
	now   store.Clock
	items []core.Transaction
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for default dates.
func WithClock(now store.Clock) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding a copy of seed, in order.
func NewSeeded(seed []core.Transaction, opts ...Option) *Store {
	s := New(opts...)
	s.items = append([]core.Transaction(nil), seed...)
	return s
}

// List returns a copy of all records in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Insert appends a record with id max+1.
func (s *Store) Insert(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.NewTransaction(core.NextID(s.items), in.WithDefaultDate(s.now()))
	s.items = append(s.items, tx)
	return tx, nil
}

// Update replaces the record with id in place.
func (s *Store) Update(_ context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = s.items[i].Apply(in)
			return s.items[i], nil
		}
	}
	return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
}

// Delete drops every record with id; a miss is a no-op.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, t := range s.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	// Zero the dropped tail of the backing array.
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = core.Transaction{}
	}
	s.items = kept
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
