package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

// entry is one memoized computation. done is closed when res/err are final.
type entry struct {
	done      chan struct{}
	res       *inference.Result
	err       error
	expiresAt time.Time
}

// ResultCache memoizes inference calls by fingerprint. Concurrent callers with
// the same fingerprint subscribe to a single in-flight computation instead of
// issuing duplicate model calls; distinct fingerprints never contend beyond
// the map lock. Expired entries are recomputed lazily on access, no sweeper.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[inference.Fingerprint]*entry
	now     func() time.Time
}

const DefaultTTL = time.Hour

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[inference.Fingerprint]*entry),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached result for fp, or runs compute exactly once
// for all concurrent callers and caches the outcome. Failed computations are
// not cached; the next caller retries.
func (c *ResultCache) GetOrCompute(ctx context.Context, fp inference.Fingerprint, compute func(context.Context) (*inference.Result, error)) (*inference.Result, error) {
	c.mu.Lock()
	if e, ok := c.entries[fp]; ok {
		select {
		case <-e.done:
			if e.err == nil && c.now().Before(e.expiresAt) {
				c.mu.Unlock()
				return e.res, nil
			}
			// expired or failed; drop and recompute below
			delete(c.entries, fp)
		default:
			// in-flight; subscribe
			c.mu.Unlock()
			select {
			case <-e.done:
				if e.err != nil {
					return nil, e.err
				}
				return e.res, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	e := &entry{done: make(chan struct{})}
	c.entries[fp] = e
	c.mu.Unlock()

	res, err := compute(ctx)

	c.mu.Lock()
	e.res, e.err = res, err
	e.expiresAt = c.now().Add(c.ttl)
	if err != nil {
		delete(c.entries, fp)
	}
	c.mu.Unlock()
	close(e.done)

	return res, err
}
