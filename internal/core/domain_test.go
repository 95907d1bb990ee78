package core

import (
	"testing"
	"time"
)

func TestNextID(t *testing.T) {
	cases := []struct {
		name string
		txs  []Transaction
		want int64
	}{
		{"empty", nil, 1},
		{"single", []Transaction{{ID: 1}}, 2},
		{"gap keeps max", []Transaction{{ID: 1}, {ID: 7}, {ID: 3}}, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextID(tc.txs); got != tc.want {
				t.Fatalf("NextID = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWithDefaultDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

	in := TransactionInput{Text: "x"}.WithDefaultDate(now)
	if in.Date != "2025-03-09" {
		t.Fatalf("expected today's date, got %q", in.Date)
	}

	in = TransactionInput{Text: "x", Date: "2020-01-01"}.WithDefaultDate(now)
	if in.Date != "2020-01-01" {
		t.Fatalf("explicit date overwritten: %q", in.Date)
	}
}

func TestApplyPreservesID(t *testing.T) {
	tx := Transaction{ID: 4, Text: "Rent", Amount: -1200, Category: "Housing", Date: "2023-10-02"}
	got := tx.Apply(TransactionInput{Text: "Rent (new)", Amount: -1300, Category: "Home", Date: "2023-11-02"})
	want := Transaction{ID: 4, Text: "Rent (new)", Amount: -1300, Category: "Home", Date: "2023-11-02"}
	if got != want {
		t.Fatalf("Apply = %+v, want %+v", got, want)
	}
	if got.Input() != (TransactionInput{Text: "Rent (new)", Amount: -1300, Category: "Home", Date: "2023-11-02"}) {
		t.Fatalf("Input round trip mismatch: %+v", got.Input())
	}
}

func TestSampleTransactionsAreOrdered(t *testing.T) {
	txs := SampleTransactions()
	if len(txs) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(txs))
	}
	for i, tx := range txs {
		if tx.ID != int64(i+1) {
			t.Fatalf("sample %d has id %d", i, tx.ID)
		}
	}
	if NextID(txs) != 4 {
		t.Fatalf("next id after samples should be 4")
	}
}
