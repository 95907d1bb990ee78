package sqlite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"budget/internal/core"
	"budget/internal/store"
	"budget/internal/store/storetest"
)

var dbCounter atomic.Int64

// newTestRepository opens a uniquely named in-memory database for t.
func newTestRepository(t *testing.T, now store.Clock) *Repository {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), dbCounter.Add(1))
	repo, err := NewRepository(name, now)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func TestRepository(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now store.Clock) store.TransactionStore {
		return newTestRepository(t, now)
	})
}

func TestNewRepositoryRequiresName(t *testing.T) {
	if _, err := NewRepository("", nil); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestDSNIsInMemory(t *testing.T) {
	dsn := DSN("budget")
	if !strings.Contains(dsn, "mode=memory") || !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("dsn %q is not a shared in-memory database", dsn)
	}
}

func TestSeedKeepsIDs(t *testing.T) {
	repo := newTestRepository(t, nil)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Seed(ctx, core.SampleTransactions()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[1] != core.SampleTransactions()[1] {
		t.Fatalf("unexpected seeded list: %+v", list)
	}

	tx, err := repo.Insert(ctx, core.TransactionInput{Text: "Bonus", Amount: 100, Date: "2023-10-04"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if tx.ID != 4 {
		t.Fatalf("expected id 4 after seed, got %d", tx.ID)
	}
}

func TestSeparateNamesAreIsolated(t *testing.T) {
	a := newTestRepository(t, nil)
	defer a.Close()
	b := newTestRepository(t, nil)
	defer b.Close()
	ctx := context.Background()

	if _, err := a.Insert(ctx, core.TransactionInput{Text: "only in a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	list, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("databases share state: %+v", list)
	}
}

func TestConcurrentInsertsGetUniqueIDs(t *testing.T) {
	repo := newTestRepository(t, nil)
	defer repo.Close()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Insert(context.Background(), core.TransactionInput{Text: "x", Amount: 1}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent insert: %v", err)
	}

	list, _ := repo.List(context.Background())
	if len(list) != n {
		t.Fatalf("expected %d records, got %d", n, len(list))
	}
	for i, tx := range list {
		if tx.ID != int64(i+1) {
			t.Fatalf("position %d has id %d", i, tx.ID)
		}
	}
}
