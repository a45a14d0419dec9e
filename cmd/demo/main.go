package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	cache "github.com/krisalay/revalidating-cache"
	"github.com/krisalay/revalidating-cache/task"
	"github.com/krisalay/revalidating-cache/types"
)

// ================= SLOW REMOTE SOURCE =================

// RemoteDirectory stands in for the expensive, authoritative source
// (a database, a remote API). Every lookup "costs" 100ms.
type RemoteDirectory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewRemoteDirectory() *RemoteDirectory {
	return &RemoteDirectory{data: map[string]string{
		"alice": "alice@example.com",
		"bob":   "bob@example.com",
	}}
}

func (d *RemoteDirectory) Lookup(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(100 * time.Millisecond) // simulated network round trip
	d.mu.RLock()
	defer d.mu.RUnlock()
	fmt.Println("REMOTE → lookup:", key)
	v, ok := d.data[key]
	return v, ok, nil
}

func (d *RemoteDirectory) Update(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[key] = value
}

// ================= CHEAP LOCAL SOURCE =================

// localHints is the cheap source consulted first: an in-process map that
// only knows a few keys. Layering puts it ahead of the remote lookup so
// the expensive call happens only when the cheap one comes up empty.
var localHints = map[string]string{
	"bob": "bob@local.example",
}

func hintResolver(ctx context.Context, key string) (string, bool, error) {
	v, ok := localHints[key]
	if ok {
		fmt.Println("HINTS  → hit:", key)
	}
	return v, ok, nil
}

func main() {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	remote := NewRemoteDirectory()

	// Runner keeps background revalidations alive until we drain it.
	runner := task.NewRunner()
	defer runner.Close()

	c, err := cache.New(cache.Options[string, string]{
		TTL:             5 * time.Second,
		MaxSize:         128,
		RevalidateOnGet: true,
		Resolvers: []types.FillFunc[string, string]{
			hintResolver,
			remote.Lookup,
		},
		Revalidators: []types.FillFunc[string, string]{
			remote.Lookup,
		},
		Spawn:  runner.Spawn,
		Logger: logger,
	})
	if err != nil {
		panic(err)
	}

	// ================= LAYERED RESOLUTION =================

	fmt.Println("\n--- layered resolution ---")

	// bob is in the cheap hints map: no remote call.
	v, _ := c.Get(ctx, "bob")
	fmt.Println("bob   =", v)

	// alice is only known remotely: falls through to the slow source.
	v, _ = c.Get(ctx, "alice")
	fmt.Println("alice =", v)

	// Second read is a pure cache hit.
	v, _ = c.Get(ctx, "alice")
	fmt.Println("alice =", v, "(cached)")

	// ================= BACKGROUND REVALIDATION =================

	fmt.Println("\n--- background revalidation ---")

	remote.Update("alice", "alice@new.example")

	// This hit returns the stale value immediately and kicks off a
	// detached revalidation against the remote source.
	v, _ = c.Get(ctx, "alice")
	fmt.Println("alice =", v, "(stale, revalidating in background)")

	runner.Wait()

	v, _ = c.Get(ctx, "alice")
	fmt.Println("alice =", v, "(after revalidation)")

	// ================= EXPLICIT REVALIDATION =================

	fmt.Println("\n--- explicit revalidation ---")

	remote.Update("bob", "bob@new.example")
	if err := c.Revalidate(ctx, "bob"); err != nil {
		fmt.Println("revalidate failed:", err)
	}
	v, _ = c.Get(ctx, "bob")
	fmt.Println("bob   =", v)

	fmt.Println("\nentries stored:", c.Size())
}
