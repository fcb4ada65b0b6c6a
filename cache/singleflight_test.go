package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetComputesOnceOnMiss(t *testing.T) {
	c := New[string, int]()
	var calls int32
	v, err := c.Get("a", func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("Get: v=%d err=%v", v, err)
	}
	v, err = c.Get("a", func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 99, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("expected cached 42, got v=%d err=%v", v, err)
	}
	if calls != 1 {
		t.Fatalf("expected compute called once, got %d", calls)
	}
}

func TestGetCollapsesConcurrentMisses(t *testing.T) {
	c := New[string, int]()
	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get("k", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				return 7, nil
			})
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("expected exactly one compute across concurrent misses, got %d", calls)
	}
}

func TestGetPropagatesComputeError(t *testing.T) {
	c := New[string, int]()
	wantErr := errors.New("boom")
	_, err := c.Get("a", func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if _, ok := c.Peek("a"); ok {
		t.Fatal("a failed compute must not populate the cache")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string, int]()
	c.Get("a", func() (int, error) { return 1, nil })
	c.Invalidate("a")
	if _, ok := c.Peek("a"); ok {
		t.Fatal("expected a to be gone after Invalidate")
	}
}
