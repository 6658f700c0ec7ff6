package querycache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchReturnsCachedValueWithinWindow(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "patients", "detail", "p1")

	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "amara", nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.Fetch(context.Background(), key, StaleDefault, fn)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if got != "amara" {
			t.Fatalf("Fetch = %v, want amara", got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
}

func TestFetchReloadsAfterWindowExpires(t *testing.T) {
	c := New(time.Second)
	now := time.Now()
	c.clock = func() time.Time { return now }
	key := NewKey("ehr", "patients", "detail", "p1")

	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	if _, err := c.Fetch(context.Background(), key, StaleShort, fn); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	now = now.Add(StaleShort + time.Second)
	got, err := c.Fetch(context.Background(), key, StaleShort, fn)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != int32(2) {
		t.Errorf("Fetch = %v, want second load", got)
	}
}

func TestConcurrentFetchesShareOneFlight(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "orders", "stat")

	release := make(chan struct{})
	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "orders", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]interface{}, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Fetch(context.Background(), key, StaleShort, fn)
		}(i)
	}

	// Let every reader reach the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
	for i := 0; i < readers; i++ {
		if errs[i] != nil {
			t.Fatalf("reader %d: %v", i, errs[i])
		}
		if results[i] != "orders" {
			t.Errorf("reader %d got %v", i, results[i])
		}
	}
}

func TestCallerCancelDoesNotAbortSharedFlight(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "labs", "critical")

	release := make(chan struct{})
	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "labs", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	abandoned := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, key, StaleShort, fn)
		abandoned <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-abandoned; err == nil || !strings.Contains(err.Error(), "abandoned") {
		t.Fatalf("abandoned caller error = %v", err)
	}

	// A second caller joins the still-running flight and gets the value.
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := c.Fetch(context.Background(), key, StaleShort, fn)
		if err != nil {
			t.Errorf("joined caller: %v", err)
		}
		if got != "labs" {
			t.Errorf("joined caller got %v", got)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch ran %d times, want 1", n)
	}
}

func TestInvalidateBatchMarksEveryKeyStale(t *testing.T) {
	c := New(time.Second)
	byPatient := NewKey("ehr", "appointments", "byPatient", "p1")
	byProvider := NewKey("ehr", "appointments", "byProvider", "d1")
	today := NewKey("ehr", "appointments", "today", "2026-03-02")

	c.Put(byPatient, 1)
	c.Put(byProvider, 1)
	c.Put(today, 1)
	c.Invalidate(byPatient, byProvider, today)

	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}
	for _, key := range []Key{byPatient, byProvider, today} {
		if _, err := c.Fetch(context.Background(), key, StaleTaxonomy, fn); err != nil {
			t.Fatalf("Fetch %s: %v", key, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("refetched %d keys, want 3", n)
	}
}

func TestInvalidatePrefixCoversSubtreeOnly(t *testing.T) {
	c := New(time.Second)
	listA := NewKey("ehr", "patients", "list", "limit=20")
	listB := NewKey("ehr", "patients", "list", "limit=50")
	detail := NewKey("ehr", "patients", "detail", "p1")

	c.Put(listA, 1)
	c.Put(listB, 1)
	c.Put(detail, 1)
	c.InvalidatePrefix(NewKey("ehr", "patients", "list"))

	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}
	for _, key := range []Key{listA, listB, detail} {
		if _, err := c.Fetch(context.Background(), key, StaleTaxonomy, fn); err != nil {
			t.Fatalf("Fetch %s: %v", key, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("refetched %d keys, want only the two lists", n)
	}
}

func TestInvalidateDuringFlightForcesRefetch(t *testing.T) {
	c := New(time.Second)
	key := NewKey("billing", "invoices", "detail", "i1")

	started := make(chan struct{})
	release := make(chan struct{})
	first := func(ctx context.Context) (interface{}, error) {
		close(started)
		<-release
		return "pre-mutation", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.Fetch(context.Background(), key, StaleDefault, first); err != nil {
			t.Errorf("in-flight Fetch: %v", err)
		}
	}()

	// The mutation lands while the read is still in flight.
	<-started
	c.Invalidate(key)
	close(release)
	<-done

	var calls int32
	got, err := c.Fetch(context.Background(), key, StaleDefault, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "post-mutation", nil
	})
	if err != nil {
		t.Fatalf("Fetch after invalidation: %v", err)
	}
	if got != "post-mutation" {
		t.Errorf("Fetch = %v, want the post-mutation value", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("refetched %d times, want 1", n)
	}
}

func TestInvalidatePrefixDuringFirstFlight(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "appointments", "byPatient", "p1")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Fetch(context.Background(), key, StaleDefault, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return "pre-mutation", nil
		})
		if err != nil {
			t.Errorf("in-flight Fetch: %v", err)
		}
	}()

	<-started
	c.InvalidatePrefix(NewKey("ehr", "appointments"))
	close(release)
	<-done

	var calls int32
	got, err := c.Fetch(context.Background(), key, StaleDefault, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "post-mutation", nil
	})
	if err != nil {
		t.Fatalf("Fetch after invalidation: %v", err)
	}
	if got != "post-mutation" || atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Fetch = %v after %d refetches, want post-mutation after 1", got, calls)
	}
}

func TestPutDuringFlightIsAuthoritative(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "appointments", "detail", "a1")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Fetch(context.Background(), key, StaleDefault, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return "stale read", nil
		})
		if err != nil {
			t.Errorf("in-flight Fetch: %v", err)
		}
	}()

	// A mutation response seeds the detail entry while the read runs.
	<-started
	c.Put(key, "mutation response")
	close(release)
	<-done

	var calls int32
	got, err := c.Fetch(context.Background(), key, StaleDefault, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "refetched", nil
	})
	if err != nil {
		t.Fatalf("Fetch after put: %v", err)
	}
	if got != "mutation response" {
		t.Errorf("Fetch = %v, want the seeded mutation response", got)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("refetched %d times, want a cache hit", n)
	}
}

func TestRefreshBypassesFreshness(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "orders", "stat")

	var calls int32
	fn := func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	if _, err := c.Fetch(context.Background(), key, StaleTaxonomy, fn); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got, err := c.Refresh(context.Background(), key, fn)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got != int32(2) {
		t.Errorf("Refresh = %v, want a fresh load", got)
	}
}

func TestTypedFetchRejectsMismatchedEntry(t *testing.T) {
	c := New(time.Second)
	key := NewKey("ehr", "patients", "detail", "p1")
	c.Put(key, "not an int")

	_, err := Fetch(c, context.Background(), key, StaleTaxonomy, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err == nil || !strings.Contains(err.Error(), "requested type") {
		t.Errorf("typed Fetch error = %v", err)
	}
}

func TestKeyPrefixMatching(t *testing.T) {
	key := NewKey("ehr", "patients").Child("detail", "p1")
	if key.String() != "ehr/patients/detail/p1" {
		t.Errorf("String = %s", key)
	}
	if !key.HasPrefix(NewKey("ehr", "patients")) {
		t.Error("expected prefix match")
	}
	if key.HasPrefix(NewKey("ehr", "orders")) {
		t.Error("unexpected prefix match")
	}
	if NewKey("ehr").HasPrefix(key) {
		t.Error("shorter key cannot have longer prefix")
	}
}
