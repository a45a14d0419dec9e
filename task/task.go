/*
Package task models the detached background work the cache launches for
revalidate-on-read.

Such work is fire-and-forget: the launcher does not wait for it, does not
see its errors, and holds no cancellation handle. On a long-lived server a
plain goroutine is all that is needed. Some hosts, however, tear down an
idle process or worker before detached goroutines finish; those embedders
must supply the cache with a Spawner that registers the work with whatever
keep-alive mechanism the host provides. The cache cannot enforce
completion on its own — this is a requirement on the embedding
environment.

Runner is a ready-made Spawner for environments that can at least wait at
shutdown: it tracks every spawned task and Close blocks until all of them
have finished.
*/
package task

import "sync"

// Spawner launches fn as an independent unit of concurrent work and
// returns without waiting for it.
type Spawner func(fn func())

// Go is the default Spawner: a plain detached goroutine.
func Go(fn func()) {
	go fn()
}

/*
Runner is a Spawner with a drain. Every task spawned through it is counted;
Close stops accepting new tasks and waits for the in-flight ones.

Tasks spawned after Close are dropped silently. Dropping (rather than
blocking or panicking) keeps shutdown paths simple: a late background
revalidation that never runs leaves the cache merely stale, which is the
state it was already in.
*/
type Runner struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func NewRunner() *Runner {
	return &Runner{}
}

// Spawn launches fn as a tracked detached task. It satisfies Spawner.
func (r *Runner) Spawn(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Close stops accepting tasks and blocks until every in-flight task has
// finished. Safe to call multiple times.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

// Wait blocks until currently in-flight tasks finish without closing the
// runner. Useful in tests that need a background revalidation to land.
func (r *Runner) Wait() {
	r.wg.Wait()
}
