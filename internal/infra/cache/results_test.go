package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

func okResult() *inference.Result {
	return &inference.Result{Detected: true, Rationale: "test"}
}

func TestGetOrComputeMemoizes(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	var calls int32
	compute := func(ctx context.Context) (*inference.Result, error) {
		atomic.AddInt32(&calls, 1)
		return okResult(), nil
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		res, err := c.GetOrCompute(ctx, "fp-1", compute)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if !res.Detected {
			t.Fatal("wrong result returned")
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestGetOrComputeConcurrentSingleFlight(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (*inference.Result, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return okResult(), nil
	}

	ctx := context.Background()
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = c.GetOrCompute(ctx, "fp-1", compute)
	}()
	<-started

	for i := 1; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.GetOrCompute(ctx, "fp-1", compute)
		}()
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times for one fingerprint, want 1", n)
	}
}

func TestGetOrComputeDistinctFingerprints(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	var calls int32
	compute := func(ctx context.Context) (*inference.Result, error) {
		atomic.AddInt32(&calls, 1)
		return okResult(), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "fp-a", compute); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrCompute(ctx, "fp-b", compute); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times for two fingerprints, want 2", n)
	}
}

func TestGetOrComputeTTLExpiry(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	var calls int32
	compute := func(ctx context.Context) (*inference.Result, error) {
		atomic.AddInt32(&calls, 1)
		return okResult(), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "fp-1", compute); err != nil {
		t.Fatal(err)
	}

	// still fresh
	current = current.Add(30 * time.Minute)
	if _, err := c.GetOrCompute(ctx, "fp-1", compute); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute ran %d times before expiry, want 1", n)
	}

	// past TTL, recomputed lazily
	current = current.Add(time.Hour)
	if _, err := c.GetOrCompute(ctx, "fp-1", compute); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times after expiry, want 2", n)
	}
}

func TestGetOrComputeErrorsNotCached(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	var calls int32
	boom := errors.New("provider down")
	compute := func(ctx context.Context) (*inference.Result, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, boom
		}
		return okResult(), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "fp-1", compute); !errors.Is(err, boom) {
		t.Fatalf("first call err = %v, want provider error", err)
	}
	res, err := c.GetOrCompute(ctx, "fp-1", compute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !res.Detected {
		t.Error("second call must return the recomputed result")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times, want 2 (failures are not cached)", n)
	}
}

func TestGetOrComputeWaiterHonorsContext(t *testing.T) {
	t.Parallel()

	c := NewResultCache(time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (*inference.Result, error) {
		close(started)
		<-release
		return okResult(), nil
	}

	go func() {
		_, _ = c.GetOrCompute(context.Background(), "fp-1", compute)
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrCompute(ctx, "fp-1", func(ctx context.Context) (*inference.Result, error) {
		t.Error("waiter must not start a second computation")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	close(release)
}
