package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// Summary is the income/expense/balance aggregate of a transaction list.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Summarize sums positive amounts into income and the absolute value of
// negative amounts into expense. Non-finite amounts count as neither.
func Summarize(txs []Transaction) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		a := decimal.NewFromFloat(t.Amount)
		switch a.Sign() {
		case 1:
			income = income.Add(a)
		case -1:
			expense = expense.Add(a.Abs())
		}
	}
	return Summary{
		Income:  income.InexactFloat64(),
		Expense: expense.InexactFloat64(),
		Balance: income.Sub(expense).InexactFloat64(),
	}
}
