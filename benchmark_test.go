package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	cache "github.com/krisalay/revalidating-cache"
	"github.com/krisalay/revalidating-cache/types"
)

func newBenchmarkCache(b *testing.B, opts cache.Options[string, int]) *cache.Cache[string, int] {
	b.Helper()
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	c, err := cache.New(opts)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	return c
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, cache.Options[string, int]{})

	c.Set("key", 42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "key")
	}
}

func BenchmarkGetMiss(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, cache.Options[string, int]{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, fmt.Sprintf("miss-%d", i))
	}
}

func BenchmarkGetMissResolved(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, cache.Options[string, int]{
		Resolvers: []types.FillFunc[string, int]{
			func(ctx context.Context, key string) (int, bool, error) {
				return len(key), true, nil
			},
		},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, fmt.Sprintf("miss-%d", i))
	}
}

//
// ================= WRITE BENCH =================
//

func BenchmarkSet(b *testing.B) {
	c := newBenchmarkCache(b, cache.Options[string, int]{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
}

func BenchmarkSetAtCapacity(b *testing.B) {
	c := newBenchmarkCache(b, cache.Options[string, int]{MaxSize: 1024})

	for i := 0; i < 1024; i++ {
		c.Set(fmt.Sprintf("warm-%d", i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkParallelGet(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, cache.Options[string, int]{})

	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Get(ctx, "key-42")
		}
	})
}

//
// ================= HIGH CONCURRENCY BENCH =================
//

func BenchmarkHighConcurrency(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, cache.Options[string, int]{})

	keys := make([]string, 10000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		c.Set(keys[i], i)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.Get(ctx, keys[j%len(keys)])
			}
		}()
	}
	wg.Wait()
}
