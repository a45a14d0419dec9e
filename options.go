package cache

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/krisalay/revalidating-cache/task"
	"github.com/krisalay/revalidating-cache/types"
)

// ErrTTLRequired is returned by New when no positive TTL is configured.
// Every entry needs an expiry window; there is no "never expires" mode.
var ErrTTLRequired = errors.New("cache: Options.TTL must be positive")

// ErrNoRevalidators is returned by Revalidate when neither the cache
// configuration nor the call supplied any revalidator. This is the one
// hard failure the public surface reports; it is detected synchronously,
// before any revalidator could have been invoked.
var ErrNoRevalidators = errors.New("cache: no revalidators configured")

/*
Options configures a Cache. All fields are read once by New and are
immutable afterwards; in particular the TTL cannot be changed for a live
cache (every entry carries the TTL it was written with).
*/
type Options[K comparable, V any] struct {

	// TTL is the expiry window stamped on every written entry. Required.
	TTL time.Duration

	// MaxSize caps the number of stored entries. Zero means unbounded.
	// When the cache is at capacity, Set performs one linear sweep that
	// clears already-expired entries and evicts the least-recently-written
	// one (see the eviction package for why this is not true LRU).
	MaxSize int

	// ResetTTLOnGet re-stamps WrittenAt on every hit, extending the expiry
	// window. It also makes the entry the most-recently-written one,
	// protecting it from the next capacity sweep. With this enabled the
	// eviction policy effectively becomes read-recency LRU.
	ResetTTLOnGet bool

	// RevalidateOnGet launches a detached background revalidation on every
	// hit, except hits produced by the same call's own miss resolution
	// (a value just resolved is assumed fresh). The reading caller is
	// never blocked on it.
	RevalidateOnGet bool

	// Resolvers fill cache misses, tried strictly in order; the first one
	// to produce a value wins. A per-call list passed to Get replaces this
	// list entirely for that call.
	Resolvers []types.FillFunc[K, V]

	// Revalidators confirm or refresh present entries, same ordering and
	// short-circuit rules as Resolvers. A per-call list passed to
	// Revalidate replaces this list entirely for that call.
	Revalidators []types.FillFunc[K, V]

	// CoalesceFills collapses concurrent resolutions (and concurrent
	// revalidations) of the same key into one pipeline run whose result is
	// shared. Off by default: the baseline behavior is that concurrent
	// misses for one key each run the resolvers.
	CoalesceFills bool

	// Spawn launches the detached revalidation tasks. Defaults to task.Go
	// (a plain goroutine). Hosts that tear down idle workers should pass
	// something that keeps the work alive, e.g. (*task.Runner).Spawn.
	Spawn task.Spawner

	// Logger receives debug-level records of absorbed fill failures,
	// sweep evictions and revalidation deletions. Defaults to a nop.
	Logger *zap.Logger

	// Metrics receives lifecycle events. Defaults to types.NoopMetrics.
	Metrics types.Metrics

	// Now is the clock. Defaults to time.Now. Overridden in tests.
	Now func() time.Time
}
