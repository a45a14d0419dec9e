package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call
these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache successfully returns a stored value.
	Hit()

	// Miss is called when the cache does NOT find a usable entry for a key.
	Miss()

	// Eviction is called when a key is removed by the capacity sweep
	// because the cache is full and needs space.
	Eviction()

	// Expire is called when a key is removed because it has passed its TTL,
	// either lazily on read or opportunistically during the capacity sweep.
	Expire()

	// Resolve is called when the miss-resolution pipeline runs.
	Resolve()

	// Revalidate is called when the revalidation pipeline runs.
	Revalidate()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

We don't want to force every user of the cache to implement metrics.
If someone does not care about metrics, the cache should still work without
nil pointer checks everywhere. So we provide a default implementation that
simply ignores all metric events.
*/
type NoopMetrics struct{}

// All methods below intentionally do nothing.
// This satisfies the Metrics interface without side effects.

func (NoopMetrics) Hit()        {}
func (NoopMetrics) Miss()       {}
func (NoopMetrics) Eviction()   {}
func (NoopMetrics) Expire()     {}
func (NoopMetrics) Resolve()    {}
func (NoopMetrics) Revalidate() {}
