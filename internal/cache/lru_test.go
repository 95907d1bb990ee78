package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[uint64, string](2, time.Minute)
	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set(1, "one")
	if v, ok := c.Get(1); !ok || v != "one" {
		t.Fatalf("Get(1) = %q, %v", v, ok)
	}
	c.Set(1, "uno")
	if v, _ := c.Get(1); v != "uno" {
		t.Fatalf("overwrite lost: %q", v)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d", c.Size())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[uint64, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // 2 is now the oldest
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Fatal("expected key 2 evicted")
	}
	for _, k := range []uint64{1, 3} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("key %d evicted", k)
		}
	}
}

func TestLRU_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[uint64, int](4, time.Minute).WithClock(clock.now)
	c.Set(1, 1)
	c.Set(2, 2)

	clock.advance(30 * time.Second)
	c.Set(3, 3)
	clock.advance(45 * time.Second)

	if _, ok := c.Get(1); ok {
		t.Fatal("expired entry returned")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if _, ok := c.Get(3); !ok {
		t.Fatal("fresh entry removed")
	}
}

func TestLRU_DeleteAndStats(t *testing.T) {
	c := NewLRU[uint64, int](4, time.Minute)
	c.Set(7, 7)
	c.Get(7)
	c.Delete(7)
	c.Get(7)

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("stats = %d hits, %d misses", hits, misses)
	}
}

func TestLRU_MinimumSize(t *testing.T) {
	c := NewLRU[uint64, int](0, time.Minute)
	c.Set(1, 1)
	if _, ok := c.Get(1); !ok {
		t.Fatal("size-0 cache must still hold one entry")
	}
}

func TestManager_CleanAllAndRun(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRU[uint64, int](4, time.Second).WithClock(clock.now)
	c.Set(1, 1)
	clock.advance(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
