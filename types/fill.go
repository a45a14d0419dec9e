package types

import "context"

/*
FillFunc is the contract between the cache and an external source of
values. Both resolvers (which fill a miss) and revalidators (which confirm
or refresh a present entry) have this shape.

Return conventions:
-------------------
- (v, true, nil)  : the source produced a value. The cache stores it.
- (_, false, nil) : the source had nothing for this key.
- (_, _, err)     : the source failed.

"Had nothing" and "failed" are treated the same way by the cache: it moves
on to the next function in the pipeline. Errors are never surfaced to the
caller of Get or Revalidate; callers only learn whether a value was
ultimately obtained. If the distinction matters, observe it through the
configured logger or metrics instead.

The context is the one passed to Get/Revalidate, except for background
revalidation launched by the cache itself, which runs detached with a
fresh context. There is no timeout imposed by the cache: a FillFunc that
hangs, hangs its caller.
*/
type FillFunc[K comparable, V any] func(ctx context.Context, key K) (V, bool, error)
