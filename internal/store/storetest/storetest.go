// Package storetest holds the behaviour every store.TransactionStore must show.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/store"
)

// Factory returns a fresh, empty store using now as its clock.
type Factory func(t *testing.T, now store.Clock) store.TransactionStore

// FixedNow is the clock handed to factories.
var FixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// Run executes the shared store suite.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	clock := func() time.Time { return FixedNow }

	open := func(t *testing.T) store.TransactionStore {
		t.Helper()
		s := newStore(t, clock)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("empty list", func(t *testing.T) {
		s := open(t)
		got, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil list, got %#v", got)
		}
	})

	t.Run("insert assigns sequential ids", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			tx, err := s.Insert(ctx, core.TransactionInput{Text: "t", Amount: float64(i), Category: "c", Date: "2024-01-01"})
			if err != nil {
				t.Fatalf("Insert %d: %v", i, err)
			}
			if tx.ID != int64(i) {
				t.Fatalf("insert %d got id %d", i, tx.ID)
			}
		}
		list := mustList(t, s)
		for i, tx := range list {
			if tx.ID != int64(i+1) || tx.Amount != float64(i+1) {
				t.Fatalf("position %d holds %+v", i, tx)
			}
		}
	})

	t.Run("insert round trip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		mustInsert(t, s, core.TransactionInput{Text: "Salary", Amount: 5000, Category: "Income", Date: "2023-10-01"})
		before := mustList(t, s)

		in := core.TransactionInput{Text: "Rent", Amount: -1200.5, Category: "Housing", Date: "2023-10-02"}
		created, err := s.Insert(ctx, in)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if created.Input() != in {
			t.Fatalf("created fields %+v, want %+v", created.Input(), in)
		}

		after := mustList(t, s)
		want := append(before, created)
		if !reflect.DeepEqual(after, want) {
			t.Fatalf("list after insert = %+v, want %+v", after, want)
		}
	})

	t.Run("insert defaults date to today", func(t *testing.T) {
		s := open(t)
		tx := mustInsert(t, s, core.TransactionInput{Text: "Coffee", Amount: -3, Category: "Food"})
		if tx.Date != "2025-06-15" {
			t.Fatalf("expected default date 2025-06-15, got %q", tx.Date)
		}
	})

	t.Run("insert accepts empty fields", func(t *testing.T) {
		s := open(t)
		tx := mustInsert(t, s, core.TransactionInput{})
		if tx.ID != 1 || tx.Text != "" || tx.Category != "" || tx.Amount != 0 {
			t.Fatalf("unexpected record %+v", tx)
		}
	})

	t.Run("ids continue after delete of the max", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		mustInsert(t, s, core.TransactionInput{Text: "a"})
		mustInsert(t, s, core.TransactionInput{Text: "b"})
		if err := s.Delete(ctx, 2); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		// max+1 reuses a freed top id; uniqueness still holds
		if tx := mustInsert(t, s, core.TransactionInput{Text: "c"}); tx.ID != 2 {
			t.Fatalf("expected id 2, got %d", tx.ID)
		}
		if err := s.Delete(ctx, 1); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if tx := mustInsert(t, s, core.TransactionInput{Text: "d"}); tx.ID != 3 {
			t.Fatalf("expected id 3, got %d", tx.ID)
		}
	})

	t.Run("update replaces fields and keeps others", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		mustInsert(t, s, core.TransactionInput{Text: "Salary", Amount: 5000, Category: "Income", Date: "2023-10-01"})
		mustInsert(t, s, core.TransactionInput{Text: "Rent", Amount: -1200, Category: "Housing", Date: "2023-10-02"})
		mustInsert(t, s, core.TransactionInput{Text: "Groceries", Amount: -300, Category: "Food", Date: "2023-10-03"})
		before := mustList(t, s)

		in := core.TransactionInput{Text: "Rent Nov", Amount: -1250, Category: "Home", Date: "2023-11-02"}
		updated, err := s.Update(ctx, 2, in)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != 2 || updated.Input() != in {
			t.Fatalf("updated = %+v", updated)
		}

		after := mustList(t, s)
		if len(after) != len(before) {
			t.Fatalf("length changed: %d -> %d", len(before), len(after))
		}
		for i := range after {
			if after[i].ID == 2 {
				if after[i] != updated {
					t.Fatalf("stored %+v, returned %+v", after[i], updated)
				}
				continue
			}
			if after[i] != before[i] {
				t.Fatalf("record %d changed: %+v -> %+v", i, before[i], after[i])
			}
		}
	})

	t.Run("update keeps an empty date", func(t *testing.T) {
		s := open(t)
		mustInsert(t, s, core.TransactionInput{Text: "a", Date: "2023-10-01"})
		updated, err := s.Update(context.Background(), 1, core.TransactionInput{Text: "b"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Date != "" {
			t.Fatalf("update must replace the date as given, got %q", updated.Date)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := open(t)
		mustInsert(t, s, core.TransactionInput{Text: "a", Amount: 1})
		before := mustList(t, s)

		_, err := s.Update(context.Background(), 99, core.TransactionInput{Text: "x"})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if after := mustList(t, s); !reflect.DeepEqual(after, before) {
			t.Fatalf("store changed: %+v -> %+v", before, after)
		}
	})

	t.Run("delete existing id", func(t *testing.T) {
		s := open(t)
		mustInsert(t, s, core.TransactionInput{Text: "a"})
		mustInsert(t, s, core.TransactionInput{Text: "b"})
		mustInsert(t, s, core.TransactionInput{Text: "c"})

		if err := s.Delete(context.Background(), 2); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		got := mustList(t, s)
		if len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
			t.Fatalf("unexpected list after delete: %+v", got)
		}
	})

	t.Run("delete unknown id is a no-op", func(t *testing.T) {
		s := open(t)
		mustInsert(t, s, core.TransactionInput{Text: "a"})
		before := mustList(t, s)

		if err := s.Delete(context.Background(), 42); err != nil {
			t.Fatalf("Delete unknown id returned %v", err)
		}
		if after := mustList(t, s); !reflect.DeepEqual(after, before) {
			t.Fatalf("store changed: %+v -> %+v", before, after)
		}
	})

	t.Run("list returns a copy", func(t *testing.T) {
		s := open(t)
		mustInsert(t, s, core.TransactionInput{Text: "a"})
		got := mustList(t, s)
		got[0].Text = "mutated"
		if again := mustList(t, s); again[0].Text != "a" {
			t.Fatalf("list shares memory with the store")
		}
	})
}

func mustInsert(t *testing.T, s store.TransactionStore, in core.TransactionInput) core.Transaction {
	t.Helper()
	tx, err := s.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return tx
}

func mustList(t *testing.T, s store.TransactionStore) []core.Transaction {
	t.Helper()
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return list
}
