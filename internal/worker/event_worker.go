// Package worker consumes transaction change events and keeps a running
// projection of the ledger they describe.
package worker

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
)

// EventWorker applies change events to an in-process copy of the ledger and
// logs the resulting summary.
type EventWorker struct {
	logger *applog.Logger

	mu       sync.Mutex
	ledger   map[int64]core.Transaction
	handled  uint64
	lastSeen map[int64]int64 // id -> unix nanos of the newest applied event
}

func NewEventWorker(logger *applog.Logger) *EventWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &EventWorker{
		logger:   logger.WithComponent(applog.ComponentWorker),
		ledger:   make(map[int64]core.Transaction),
		lastSeen: make(map[int64]int64),
	}
}

// HandleEvent is an amqp.EventHandler. Events older than one already applied
// for the same id are ignored, so redeliveries do not roll state back.
func (w *EventWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev == nil {
		return fmt.Errorf("nil event")
	}
	if !ev.Type.Valid() {
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.Type != amqp.EventDeleted && ev.Transaction == nil {
		return fmt.Errorf("%s event %d carries no transaction", ev.Type, ev.ID)
	}

	w.mu.Lock()
	at := ev.Timestamp.UnixNano()
	if prev, ok := w.lastSeen[ev.ID]; ok && at < prev {
		w.mu.Unlock()
		w.logger.DebugContext(ctx, "Skipping stale event",
			applog.FieldEventType, ev.Type, applog.FieldTxID, ev.ID)
		return nil
	}
	w.lastSeen[ev.ID] = at

	if ev.Type == amqp.EventDeleted {
		delete(w.ledger, ev.ID)
	} else {
		w.ledger[ev.ID] = *ev.Transaction
	}
	w.handled++
	summary := core.Summarize(w.snapshotLocked())
	handled := w.handled
	w.mu.Unlock()

	fields := applog.NewFields().WithOperation(applog.OpConsume)
	if t := ev.Transaction; t != nil {
		fields = fields.WithTransaction(t.ID, t.Text, t.Amount, t.Category, t.Date)
	} else {
		fields[applog.FieldTxID] = ev.ID
	}
	args := append(fields.ToSlice(),
		applog.FieldEventType, ev.Type,
		"handled", handled,
		"income", core.FormatAmount(summary.Income),
		"expense", core.FormatAmount(summary.Expense),
		"balance", core.FormatSigned(summary.Balance),
	)
	w.logger.InfoContext(ctx, "Transaction event applied", args...)
	return nil
}

// Transactions returns the projected ledger ordered by id.
func (w *EventWorker) Transactions() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Handled is the number of events applied so far.
func (w *EventWorker) Handled() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handled
}

func (w *EventWorker) snapshotLocked() []core.Transaction {
	out := make([]core.Transaction, 0, len(w.ledger))
	for _, t := range w.ledger {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b core.Transaction) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
