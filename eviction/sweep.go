package eviction

/*
This file decides what the cache removes when it runs out of space.

The policy is "least recently WRITTEN", not classic LRU. The candidate is
the entry with the smallest WrittenAt, and WrittenAt only moves on writes
(Set, a successful resolution/revalidation, or a TTL refresh-on-read).
Plain reads do not protect an entry from eviction. The policy only behaves
like true LRU when the cache refreshes TTL on every read, because reads
then count as writes. Callers should not expect read-recency semantics.
*/

import (
	"time"

	"github.com/krisalay/revalidating-cache/store"
	"github.com/krisalay/revalidating-cache/types"
)

// Result describes what one capacity sweep did.
type Result[K comparable] struct {
	// Expired is how many already-expired entries the sweep deleted in
	// passing. This is the cache's only cleanup of expired entries other
	// than the one under direct access.
	Expired int

	// Evicted is true when the least-recently-written candidate had to be
	// deleted. It is false when the expired cleanup already removed the
	// candidate (or the store was empty).
	Evicted bool

	// Victim is the evicted key. Only meaningful when Evicted is true.
	Victim K
}

/*
Sweep makes room for one insertion in a full store.

It is a single linear pass that does two jobs at once:

1. Every entry whose expiry has already passed is deleted immediately.
2. The entry with the smallest WrittenAt seen during the pass is tracked
   as the eviction candidate. ALL entries compete for candidacy, expired
   ones included — if the candidate was itself expired, step 1 already
   removed it and no extra eviction happens.

After the pass, the candidate is deleted only if it still exists.

The caller is expected to invoke Sweep only when the store is at capacity,
keeping insertion O(1) in the common case and O(n) only under pressure.
Sweep itself does not insert anything and never fails.

Entries that tie on WrittenAt are broken arbitrarily: the pass follows map
iteration order, so any one of the tied entries may be chosen. With a real
clock ties are rare; exactly one entry is evicted either way.
*/
func Sweep[K comparable, V any](s *store.Store[K, V], now time.Time, metrics types.Metrics) Result[K] {
	var (
		res    Result[K]
		oldest time.Time
		have   bool
	)

	s.Range(func(k K, ent types.Entry[V]) bool {
		if !have || ent.WrittenAt.Before(oldest) {
			oldest = ent.WrittenAt
			res.Victim = k
			have = true
		}
		if ent.Expired(now) {
			s.Delete(k)
			res.Expired++
			metrics.Expire()
		}
		return true
	})

	if have {
		if _, ok := s.Get(res.Victim); ok {
			s.Delete(res.Victim)
			res.Evicted = true
			metrics.Eviction()
		}
	}
	return res
}
