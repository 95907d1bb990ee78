package client

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

// Kind is the income/expense toggle of the form.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ErrIncompleteForm is returned when text, amount or category is blank.
var ErrIncompleteForm = errors.New("text, amount and category are required")

// Form is what a user types. Amount is unsigned; Kind gives the sign.
type Form struct {
	Kind     Kind
	Text     string
	Amount   string
	Category string
	Date     string
}

// NewForm is a blank expense form dated today.
func NewForm(now time.Time) Form {
	return Form{Kind: KindExpense, Date: core.Today(now)}
}

// FormFor fills a form from t: absolute amount, income for amounts >= 0.
func FormFor(t core.Transaction) Form {
	kind := KindExpense
	if t.Amount >= 0 {
		kind = KindIncome
	}
	return Form{
		Kind:     kind,
		Text:     t.Text,
		Amount:   strconv.FormatFloat(math.Abs(t.Amount), 'f', -1, 64),
		Category: t.Category,
		Date:     t.Date,
	}
}

// Input checks presence and converts the form to a signed input.
func (f Form) Input() (core.TransactionInput, error) {
	if strings.TrimSpace(f.Text) == "" || strings.TrimSpace(f.Amount) == "" || strings.TrimSpace(f.Category) == "" {
		return core.TransactionInput{}, ErrIncompleteForm
	}
	v, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, err
	}

	v = math.Abs(v)
	if f.Kind != KindIncome {
		v = -v
	}
	return core.TransactionInput{Text: f.Text, Amount: v, Category: f.Category, Date: f.Date}, nil
}
