package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
)

// EventType says which mutation produced an event.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Valid reports whether t is one of the published event types.
func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// TransactionEvent is published after every successful store mutation.
// Transaction is nil for deletions.
type TransactionEvent struct {
	Type        EventType         `json:"type"`
	ID          int64             `json:"id"`
	Transaction *core.Transaction `json:"transaction"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewCreatedEvent and friends stamp the event with at.
func NewCreatedEvent(tx core.Transaction, at time.Time) *TransactionEvent {
	return &TransactionEvent{Type: EventCreated, ID: tx.ID, Transaction: &tx, Timestamp: at.UTC()}
}

func NewUpdatedEvent(tx core.Transaction, at time.Time) *TransactionEvent {
	return &TransactionEvent{Type: EventUpdated, ID: tx.ID, Transaction: &tx, Timestamp: at.UTC()}
}

func NewDeletedEvent(id int64, at time.Time) *TransactionEvent {
	return &TransactionEvent{Type: EventDeleted, ID: id, Timestamp: at.UTC()}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Type != EventDeleted && e.Transaction == nil {
		return nil, fmt.Errorf("%s event for id %d has no transaction", e.Type, e.ID)
	}
	return &e, nil
}
