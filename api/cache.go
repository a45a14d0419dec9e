package cache

import (
	"context"

	"github.com/krisalay/revalidating-cache/types"
)

/*
Cache defines the PUBLIC API of the revalidating cache.
This is a contract that guarantees certain behaviors, without exposing internals.
All of the details (expiry bookkeeping, the eviction sweep, pipeline execution,
locking, background task handling) are hidden behind this interface.
*/
type Cache[K comparable, V any] interface {

	/*
		Set stores a key-value pair and returns the stored entry.

		BEHAVIOR:
		---------
		- Stamps the entry with the current time and the configured TTL
		- If the cache is at capacity, runs the eviction sweep FIRST:
		  expired entries are cleaned up and the least-recently-written
		  entry is evicted
		- Replaces any prior entry for the key unconditionally

		IMPORTANT:
		----------
		- There is no per-key TTL. Every write uses the configured TTL.
		- Immediately after Set returns, the entry count never exceeds
		  the configured maximum (when one is configured).
	*/
	Set(key K, value V) types.Entry[V]

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		---------
		1. If the key exists and is NOT expired:
		   - Return the value immediately (cache hit)
		   - Optionally refresh its TTL (reset-on-read)
		   - Optionally launch a detached background revalidation

		2. If the key does NOT exist, or exists but is expired:
		   - The expired entry (if any) is removed on the spot
		   - The resolvers run in order; the first value wins
		   - The winning value is stored and returned

		3. If no resolver produces a value:
		   - ok is false. Resolver errors are NEVER surfaced here;
		     a failing source and an empty source look the same.

		Passing resolvers REPLACES the configured list for this call only.
		Get blocks only while resolvers run.
	*/
	Get(ctx context.Context, key K, resolvers ...types.FillFunc[K, V]) (V, bool)

	/*
		Delete removes a key from the cache immediately.

		This operation is idempotent: removing a non-existing key is safe.
	*/
	Delete(key K)

	/*
		Revalidate re-checks a key against the revalidators.

		BEHAVIOR:
		---------
		- With no revalidators available (configured or per-call), fails
		  with a configuration error BEFORE invoking anything.
		- The first revalidator to produce a value wins; the value is
		  re-stored with a fresh timestamp and TTL.
		- If every revalidator comes up empty (absent or failed), the key
		  is DELETED: it is treated as no longer valid, not merely stale.

		Passing revalidators REPLACES the configured list for this call.
	*/
	Revalidate(ctx context.Context, key K, revalidators ...types.FillFunc[K, V]) error

	/*
		Size returns the number of stored entries.

		Expiry is lazy: entries that have expired but have not yet been
		observed by a read or a sweep are still counted.
	*/
	Size() int

	// Keys returns a snapshot of the stored keys in unspecified order.
	Keys() []K

	// Flush drops every entry.
	Flush()
}
