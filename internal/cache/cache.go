package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jcallahan/reviewd/internal/metrics"
	"github.com/jcallahan/reviewd/internal/review"
)

// ComputeFunc produces the review result for a fingerprint on cache miss.
type ComputeFunc func(ctx context.Context) (*review.Result, error)

type entry struct {
	fingerprint string
	result      *review.Result
	createdAt   time.Time
	ttl         time.Duration
	elem        *list.Element
}

// Cache maps diff fingerprints to review results. It is bounded by entry
// count (LRU eviction) and per-entry TTL, and guarantees at most one
// concurrent computation per fingerprint: the first caller to reserve a key
// computes, later callers for the same key wait and receive the identical
// result. A failed computation releases the reservation so the next caller
// can retry.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*entry
	lru         *list.List // front = most recently used
	maxEntries  int
	ttl         time.Duration
	degradedTTL time.Duration

	flight singleflight.Group
	now    func() time.Time
}

// New creates a cache bounded to maxEntries. Results are kept for ttl;
// degraded results use degradedTTL so a later retry can refresh them once
// the AI layer recovers.
func New(maxEntries int, ttl, degradedTTL time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Cache{
		entries:     make(map[string]*entry),
		lru:         list.New(),
		maxEntries:  maxEntries,
		ttl:         ttl,
		degradedTTL: degradedTTL,
		now:         time.Now,
	}
}

// Get returns the still-valid result for a fingerprint, or (nil, false).
func (c *Cache) Get(fingerprint string) (*review.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if e.ttl > 0 && c.now().Sub(e.createdAt) > e.ttl {
		c.removeLocked(e)
		metrics.CacheEvictions.Inc()
		metrics.CacheMisses.Inc()
		return nil, false
	}
	c.lru.MoveToFront(e.elem)
	metrics.CacheHits.Inc()
	return e.result, true
}

// Put stores a result under a fingerprint. Degraded results get the shorter
// TTL. The oldest entry is evicted when the size bound is exceeded.
func (c *Cache) Put(fingerprint string, res *review.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttl
	if res.Degraded {
		ttl = c.degradedTTL
	}

	if e, ok := c.entries[fingerprint]; ok {
		e.result = res
		e.createdAt = c.now()
		e.ttl = ttl
		c.lru.MoveToFront(e.elem)
		return
	}

	e := &entry{
		fingerprint: fingerprint,
		result:      res,
		createdAt:   c.now(),
		ttl:         ttl,
	}
	e.elem = c.lru.PushFront(e)
	c.entries[fingerprint] = e

	for len(c.entries) > c.maxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*entry))
		metrics.CacheEvictions.Inc()
	}
}

// Do returns the cached result for fingerprint or runs compute exactly once
// across all concurrent callers of the same fingerprint. The computation is
// detached from the caller's context: if the caller's ctx expires while
// waiting, Do returns the context error but the in-flight computation still
// completes and populates the cache for subsequent callers.
//
// shared reports whether the result was produced by another caller's
// in-flight computation.
func (c *Cache) Do(ctx context.Context, fingerprint string, compute ComputeFunc) (res *review.Result, shared bool, err error) {
	ch := c.flight.DoChan(fingerprint, func() (any, error) {
		// Re-check under the reservation: another owner may have finished
		// between the caller's miss and this reservation.
		if cached, ok := c.Get(fingerprint); ok {
			return cached, nil
		}
		r, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Put(fingerprint, r)
		return r, nil
	})

	select {
	case out := <-ch:
		if out.Err != nil {
			return nil, false, out.Err
		}
		return out.Val.(*review.Result), out.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Len returns the number of live entries, counting expired ones until they
// are lazily evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) removeLocked(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.fingerprint)
}
