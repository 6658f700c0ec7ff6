package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefetcherResolvesKeyPerTick(t *testing.T) {
	c := New(time.Second)
	r := NewRefetcher(c)

	var day atomic.Value
	day.Store("2026-03-02")
	keyFn := func() Key {
		return NewKey("ehr", "appointments", "today", day.Load().(string))
	}

	r.Register("appointments-today", keyFn, 5*time.Millisecond, func(ctx context.Context) (interface{}, error) {
		return "schedule", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	waitFor := func(key Key) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if _, ok := c.Peek(key); ok {
				return
			}
			time.Sleep(2 * time.Millisecond)
		}
		t.Fatalf("view never refreshed under %s", key)
	}

	waitFor(NewKey("ehr", "appointments", "today", "2026-03-02"))

	// Midnight rollover: subsequent ticks must land under the new day.
	day.Store("2026-03-03")
	waitFor(NewKey("ehr", "appointments", "today", "2026-03-03"))

	cancel()
	wg.Wait()
}
