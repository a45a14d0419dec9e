package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	api "github.com/krisalay/revalidating-cache/api"
	"github.com/krisalay/revalidating-cache/engine"
	"github.com/krisalay/revalidating-cache/eviction"
	"github.com/krisalay/revalidating-cache/store"
	"github.com/krisalay/revalidating-cache/task"
	"github.com/krisalay/revalidating-cache/types"
)

/*
Cache is the main implementation: an in-process key/value cache with
time-based expiry, optional capacity-bounded eviction, and pluggable
asynchronous pipelines for filling misses (resolution) and refreshing
present entries (revalidation).

This struct is the orchestrator that connects:
- the store (one owned map, no shards, no global state)
- the engine (resolve/revalidate pipelines)
- the eviction sweep
- the detached-task spawner

Concurrency contract:
---------------------
One mutex owns the map. Every synchronous section — expiry check, capacity
sweep, insertion, deletion — runs to completion under it, so those
operations are atomic with respect to each other. The mutex is NEVER held
across a resolver or revalidator call: the slow, suspending work happens
unlocked, and the winning value is written back in a fresh exclusive
section. A consequence callers must know about: between a miss being
detected and its resolver completing, another Get for the same key can
detect the same miss and run the resolvers again. The cache does not
coalesce concurrent misses unless CoalesceFills is enabled.
*/
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	store *store.Store[K, V]
	eng   *engine.Engine[K, V]

	ttl             time.Duration
	maxSize         int
	resetTTLOnGet   bool
	revalidateOnGet bool
	resolvers       []types.FillFunc[K, V]
	revalidators    []types.FillFunc[K, V]

	spawn   task.Spawner
	logger  *zap.Logger
	metrics types.Metrics
	now     func() time.Time
}

// Cache promises the behavior documented on the api contract.
var _ api.Cache[string, any] = (*Cache[string, any])(nil)

// New builds a Cache from opts. The only invalid configuration is a
// missing TTL; everything else has a working default.
func New[K comparable, V any](opts Options[K, V]) (*Cache[K, V], error) {
	if opts.TTL <= 0 {
		return nil, ErrTTLRequired
	}
	if opts.Spawn == nil {
		opts.Spawn = task.Go
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = types.NoopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Cache[K, V]{
		store:           store.New[K, V](),
		eng:             engine.New[K, V](opts.CoalesceFills, opts.Logger, opts.Metrics),
		ttl:             opts.TTL,
		maxSize:         opts.MaxSize,
		resetTTLOnGet:   opts.ResetTTLOnGet,
		revalidateOnGet: opts.RevalidateOnGet,
		resolvers:       opts.Resolvers,
		revalidators:    opts.Revalidators,
		spawn:           opts.Spawn,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		now:             opts.Now,
	}, nil
}

/*
Set stores a value under key and returns the stored entry.

If the cache is at capacity this first runs the eviction sweep: one pass
over all entries that deletes every already-expired entry and then evicts
the least-recently-written survivor. The insertion itself is unconditional
— any prior entry for the key is replaced in full, with a fresh WrittenAt
and the configured TTL.

Set never blocks on external calls and never fails. Immediately after it
returns, Size() <= MaxSize holds (when MaxSize is configured).
*/
func (c *Cache[K, V]) Set(key K, value V) types.Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(key, value)
}

// setLocked is the body of Set. Callers must hold c.mu.
func (c *Cache[K, V]) setLocked(key K, value V) types.Entry[V] {
	now := c.now()

	if c.maxSize > 0 && c.store.Len() >= c.maxSize {
		res := eviction.Sweep(c.store, now, c.metrics)
		if res.Evicted {
			c.logger.Debug("capacity sweep evicted least-recently-written entry",
				zap.Any("victim", res.Victim),
				zap.Int("expired_removed", res.Expired))
		} else if res.Expired > 0 {
			c.logger.Debug("capacity sweep removed expired entries",
				zap.Int("expired_removed", res.Expired))
		}
	}

	ent := types.Entry[V]{Value: value, WrittenAt: now, TTL: c.ttl}
	c.store.Put(key, ent)
	return ent
}

/*
Get returns the value for key, doing whatever it takes to produce one:

1. Expiry check. A present-but-expired entry is deleted on the spot and
   treated as a miss. This is the only place ordinary reads evict.

2. On a miss, the resolution pipeline runs: the per-call resolvers if any
   were passed, otherwise the configured ones. The first resolver to
   produce a value wins; the value is stored with a fresh TTL and
   returned. Resolver failures are absorbed — if every resolver had
   nothing, Get simply reports ok=false.

3. On a hit, ResetTTLOnGet re-stamps the entry (a full re-set, including
   the capacity sweep), and RevalidateOnGet launches a detached
   background revalidation — unless the hit came from this call's own
   resolution, which is assumed fresh. The caller gets the value
   immediately either way; the background task mutates the cache later.

Passing resolvers replaces the configured list entirely for this call.
Get blocks only while resolvers run; the returned ok is false only when no
value could be obtained at all.
*/
func (c *Cache[K, V]) Get(ctx context.Context, key K, resolvers ...types.FillFunc[K, V]) (V, bool) {
	c.mu.Lock()
	// Sample the clock inside the exclusive section so the expiry decision
	// reflects the moment this read actually runs, not the moment it
	// started waiting for the lock.
	now := c.now()
	ent, ok := c.store.Get(key)
	if ok && ent.Expired(now) {
		c.store.Delete(key)
		c.metrics.Expire()
		ok = false
	}
	if ok {
		c.metrics.Hit()
		if c.resetTTLOnGet {
			ent = c.setLocked(key, ent.Value)
		}
		value := ent.Value
		c.mu.Unlock()

		if c.revalidateOnGet {
			c.spawnRevalidation(key)
		}
		return value, true
	}
	c.metrics.Miss()
	c.mu.Unlock()

	fns := resolvers
	if len(fns) == 0 {
		fns = c.resolvers
	}

	// Slow path, unlocked: the resolvers may suspend arbitrarily long.
	value, resolved := c.eng.Resolve(ctx, key, fns)
	if !resolved {
		var zero V
		return zero, false
	}

	c.mu.Lock()
	c.setLocked(key, value)
	c.mu.Unlock()

	// Freshly resolved values are assumed fresh; no revalidation here.
	return value, true
}

/*
Revalidate re-checks key against the revalidators: the per-call list if
any was passed, otherwise the configured ones. If neither exists it fails
with ErrNoRevalidators before anything else happens — the one hard error
of the public surface.

The first revalidator to produce a value wins and the value is re-stored
(fresh WrittenAt and TTL). If EVERY revalidator had nothing — absent or
failed, the two are indistinguishable by design — the key is deleted: an
entry that cannot be revalidated is treated as no longer valid, not merely
stale. Revalidator failures never reach the caller.
*/
func (c *Cache[K, V]) Revalidate(ctx context.Context, key K, revalidators ...types.FillFunc[K, V]) error {
	fns := revalidators
	if len(fns) == 0 {
		fns = c.revalidators
	}
	if len(fns) == 0 {
		return ErrNoRevalidators
	}

	value, ok := c.eng.Revalidate(ctx, key, fns)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.store.Delete(key)
		c.logger.Debug("revalidation produced no value, deleting key",
			zap.Any("key", key))
		return nil
	}
	c.setLocked(key, value)
	return nil
}

// Delete removes a key immediately. Idempotent.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(key)
}

// Size returns the number of stored entries. Expiry is lazy, so the count
// INCLUDES entries that are already expired but have not been observed by
// a read or a sweep yet.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Keys returns a snapshot of the stored keys in unspecified order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Keys()
}

// Flush drops every entry.
func (c *Cache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear()
}

/*
spawnRevalidation launches the background revalidation for a hit.

The task is detached: the reading caller has already returned by the time
it runs, observes none of its errors, and cannot cancel it. It therefore
gets a fresh context, not the reader's (which may be cancelled the moment
the read returns). Completion is only as guaranteed as the configured
Spawner makes it — see the task package.
*/
func (c *Cache[K, V]) spawnRevalidation(key K) {
	c.spawn(func() {
		if err := c.Revalidate(context.Background(), key); err != nil {
			// Only ErrNoRevalidators can land here: revalidate-on-read is
			// enabled but no revalidators were configured.
			c.logger.Debug("background revalidation misconfigured",
				zap.Any("key", key),
				zap.Error(err))
		}
	})
}
