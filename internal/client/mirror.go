package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"budget/internal/core"
	applog "budget/internal/log"
)

// TransactionAPI is the remote surface the mirror needs; *API satisfies it.
type TransactionAPI interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

var _ TransactionAPI = (*API)(nil)

// Mirror is a local copy of the server list. Creations refetch the list;
// updates and deletions patch the copy in place. A failed call leaves the
// copy untouched.
type Mirror struct {
	api    TransactionAPI
	logger *applog.Logger

	mu      sync.Mutex
	items   []core.Transaction
	editing int64
	isEdit  bool
}

func NewMirror(api TransactionAPI, logger *applog.Logger) *Mirror {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Mirror{api: api, logger: logger.WithComponent(applog.ComponentClient)}
}

// Refresh replaces the copy with the server list.
func (m *Mirror) Refresh(ctx context.Context) error {
	list, err := m.api.List(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error fetching transactions", applog.FieldError, err)
		return err
	}
	m.mu.Lock()
	m.items = list
	m.mu.Unlock()
	return nil
}

// Submit updates the record being edited, or creates a new one.
func (m *Mirror) Submit(ctx context.Context, f Form) (core.Transaction, error) {
	in, err := f.Input()
	if err != nil {
		return core.Transaction{}, err
	}

	if id, editing := m.Editing(); editing {
		updated, err := m.api.Update(ctx, id, in)
		if err != nil {
			m.logger.ErrorContext(ctx, "Error saving transaction", applog.FieldTxID, id, applog.FieldError, err)
			return core.Transaction{}, err
		}
		m.mu.Lock()
		for i := range m.items {
			if m.items[i].ID == updated.ID {
				m.items[i] = updated
			}
		}
		m.isEdit = false
		m.mu.Unlock()
		return updated, nil
	}

	created, err := m.api.Create(ctx, in)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error saving transaction", applog.FieldError, err)
		return core.Transaction{}, err
	}
	if err := m.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Edit enters editing mode for id and returns the prefilled form.
func (m *Mirror) Edit(id int64) (Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.items {
		if t.ID == id {
			m.editing, m.isEdit = id, true
			return FormFor(t), nil
		}
	}
	return Form{}, fmt.Errorf("edit transaction %d: %w", id, core.ErrNotFound)
}

func (m *Mirror) CancelEdit() {
	m.mu.Lock()
	m.isEdit = false
	m.mu.Unlock()
}

// Editing returns the id being edited, if any.
func (m *Mirror) Editing() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing, m.isEdit
}

// Delete asks confirm first and issues no request when it declines. It
// reports whether the delete was sent and succeeded.
func (m *Mirror) Delete(ctx context.Context, id int64, confirm func(core.Transaction) bool) (bool, error) {
	target := core.Transaction{ID: id}
	m.mu.Lock()
	for _, t := range m.items {
		if t.ID == id {
			target = t
			break
		}
	}
	m.mu.Unlock()

	if confirm != nil && !confirm(target) {
		return false, nil
	}

	if err := m.api.Delete(ctx, id); err != nil {
		m.logger.ErrorContext(ctx, "Error deleting transaction", applog.FieldTxID, id, applog.FieldError, err)
		return false, err
	}

	m.mu.Lock()
	m.items = slices.DeleteFunc(m.items, func(t core.Transaction) bool { return t.ID == id })
	m.mu.Unlock()
	return true, nil
}

// Items returns the copy newest first.
func (m *Mirror) Items() []core.Transaction {
	m.mu.Lock()
	out := slices.Clone(m.items)
	m.mu.Unlock()
	slices.Reverse(out)
	if out == nil {
		out = []core.Transaction{}
	}
	return out
}

func (m *Mirror) Summary() core.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.Summarize(m.items)
}
