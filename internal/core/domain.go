package core

import (
	"errors"
	"time"
)

// DateLayout is the ISO calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

type (
	// Transaction is a single income or expense record. A positive amount is
	// income, a negative one is an expense.
	Transaction struct {
		ID       int64   `json:"id"`
		Text     string  `json:"text"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Date     string  `json:"date"`
	}

	// TransactionInput holds the caller-supplied fields of a transaction.
	// The id is always assigned by the store.
	TransactionInput struct {
		Text     string  `json:"text"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Date     string  `json:"date,omitempty"`
	}
)

var (
	// ErrNotFound is returned when an operation targets an id the store does not hold.
	ErrNotFound = errors.New("transaction not found")
)

// Today returns the ISO date of now in UTC.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// WithDefaultDate fills an empty date with the ISO date of now.
func (in TransactionInput) WithDefaultDate(now time.Time) TransactionInput {
	if in.Date == "" {
		in.Date = Today(now)
	}
	return in
}

// NewTransaction builds the record stored under id.
func NewTransaction(id int64, in TransactionInput) Transaction {
	return Transaction{
		ID:       id,
		Text:     in.Text,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
	}
}

// Apply replaces every field but the id.
func (t Transaction) Apply(in TransactionInput) Transaction {
	return NewTransaction(t.ID, in)
}

// Input returns the mutable fields of t.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Text:     t.Text,
		Amount:   t.Amount,
		Category: t.Category,
		Date:     t.Date,
	}
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}

// NextID returns max(ids)+1, or 1 for an empty list.
func NextID(txs []Transaction) int64 {
	var max int64
	for _, t := range txs {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// SampleTransactions returns the records a fresh tracker starts with when
// sample data is enabled.
func SampleTransactions() []Transaction {
	return []Transaction{
		{ID: 1, Text: "Salary", Amount: 5000, Category: "Income", Date: "2023-10-01"},
		{ID: 2, Text: "Rent", Amount: -1200, Category: "Housing", Date: "2023-10-02"},
		{ID: 3, Text: "Groceries", Amount: -300, Category: "Food", Date: "2023-10-03"},
	}
}
