package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/revalidating-cache/types"
)

/*
Engine is the "brain" of the cache for everything that talks to the
outside world. It runs the two fill pipelines:

- Resolve: fill a cache miss from an ordered list of resolvers.
- Revalidate: confirm or refresh a present entry from an ordered list of
  revalidators.

Both pipelines share the same mechanics. Functions are invoked strictly in
list order; the first one to return a present value wins immediately and
the rest are never called. A function that returns no value, or fails, is
treated as "this source had nothing" and the pipeline moves on. Failures
are ABSORBED: the caller only learns whether a value was obtained, never
why one source declined. The absorbed error is still visible through the
logger and metrics.

The engine does NOT store anything and does NOT lock anything. Storage and
exclusive access belong to the cache; the engine runs the slow, suspending
part while no lock is held.
*/
type Engine[K comparable, V any] struct {
	logger  *zap.Logger
	metrics types.Metrics

	// coalesce collapses concurrent pipeline runs for the same key into a
	// single execution whose result is shared. Off by default: without it,
	// two goroutines missing on the same key will both run the resolvers.
	// That duplication is the documented baseline behavior, not a bug.
	coalesce bool

	// Separate groups so a slow revalidation never blocks a resolution of
	// the same key (and vice versa). Coalescing applies to both pipelines
	// or neither; the policy is never mixed.
	resolveGroup    singleflight.Group
	revalidateGroup singleflight.Group
}

func New[K comparable, V any](coalesce bool, logger *zap.Logger, metrics types.Metrics) *Engine[K, V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	return &Engine[K, V]{
		logger:   logger,
		metrics:  metrics,
		coalesce: coalesce,
	}
}

// fillResult carries a pipeline outcome through singleflight, which is
// not generic.
type fillResult[V any] struct {
	value V
	ok    bool
}

// Resolve runs the miss-resolution pipeline. It reports the first value
// produced by the resolvers, or ok=false when every resolver had nothing.
// An empty resolver list is a plain miss, not an error.
func (e *Engine[K, V]) Resolve(ctx context.Context, key K, fns []types.FillFunc[K, V]) (V, bool) {
	if len(fns) == 0 {
		var zero V
		return zero, false
	}
	e.metrics.Resolve()
	if e.coalesce {
		return e.coalesced(ctx, &e.resolveGroup, "resolve", key, fns)
	}
	return e.run(ctx, "resolve", key, fns)
}

// Revalidate runs the staleness-check pipeline with identical
// short-circuit semantics to Resolve. The caller decides what an empty
// result means (for the cache: delete the key).
func (e *Engine[K, V]) Revalidate(ctx context.Context, key K, fns []types.FillFunc[K, V]) (V, bool) {
	if len(fns) == 0 {
		var zero V
		return zero, false
	}
	e.metrics.Revalidate()
	if e.coalesce {
		return e.coalesced(ctx, &e.revalidateGroup, "revalidate", key, fns)
	}
	return e.run(ctx, "revalidate", key, fns)
}

func (e *Engine[K, V]) run(ctx context.Context, op string, key K, fns []types.FillFunc[K, V]) (V, bool) {
	for i, fn := range fns {
		v, ok, err := fn(ctx, key)
		if err != nil {
			// Absorbed by design: an erroring source and an empty source
			// look the same to the pipeline.
			e.logger.Debug("fill function failed",
				zap.String("op", op),
				zap.Int("index", i),
				zap.Any("key", key),
				zap.Error(err))
			continue
		}
		if ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

/*
coalesced funnels concurrent runs for one key through singleflight so the
pipeline executes once and everyone shares the outcome.

singleflight is keyed by string, so the cache key is rendered with
fmt.Sprint. Keys of one cache share a single K type, which makes textual
collisions between distinct keys practically a non-issue; a cache keyed by
a type whose formatting is ambiguous should leave coalescing off.
*/
func (e *Engine[K, V]) coalesced(ctx context.Context, g *singleflight.Group, op string, key K, fns []types.FillFunc[K, V]) (V, bool) {
	out, _, _ := g.Do(fmt.Sprint(key), func() (any, error) {
		v, ok := e.run(ctx, op, key, fns)
		return fillResult[V]{value: v, ok: ok}, nil
	})
	res := out.(fillResult[V])
	return res.value, res.ok
}
