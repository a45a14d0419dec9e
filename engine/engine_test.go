package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/revalidating-cache/types"
)

func present(v string) types.FillFunc[string, string] {
	return func(ctx context.Context, key string) (string, bool, error) {
		return v, true, nil
	}
}

func empty() types.FillFunc[string, string] {
	return func(ctx context.Context, key string) (string, bool, error) {
		return "", false, nil
	}
}

func failing(err error) types.FillFunc[string, string] {
	return func(ctx context.Context, key string) (string, bool, error) {
		return "", false, err
	}
}

func TestResolveOrderAndShortCircuit(t *testing.T) {
	e := New[string, string](false, nil, nil)

	var thirdCalled bool
	fns := []types.FillFunc[string, string]{
		empty(),
		present("winner"),
		func(ctx context.Context, key string) (string, bool, error) {
			thirdCalled = true
			return "loser", true, nil
		},
	}

	v, ok := e.Resolve(context.Background(), "k", fns)
	require.True(t, ok)
	require.Equal(t, "winner", v)
	require.False(t, thirdCalled, "pipeline must stop at the first present value")
}

func TestResolveAbsorbsErrors(t *testing.T) {
	e := New[string, string](false, nil, nil)

	fns := []types.FillFunc[string, string]{
		failing(errors.New("source exploded")),
		present("fallback"),
	}

	v, ok := e.Resolve(context.Background(), "k", fns)
	require.True(t, ok)
	require.Equal(t, "fallback", v)
}

func TestResolveExhausted(t *testing.T) {
	e := New[string, string](false, nil, nil)

	fns := []types.FillFunc[string, string]{
		empty(),
		failing(errors.New("nope")),
	}

	_, ok := e.Resolve(context.Background(), "k", fns)
	require.False(t, ok)
}

func TestResolveEmptyListIsMiss(t *testing.T) {
	e := New[string, string](false, nil, nil)

	_, ok := e.Resolve(context.Background(), "k", nil)
	require.False(t, ok)
}

func TestRevalidateSameSemantics(t *testing.T) {
	e := New[string, string](false, nil, nil)

	fns := []types.FillFunc[string, string]{
		failing(errors.New("flaky")),
		empty(),
		present("fresh"),
	}

	v, ok := e.Revalidate(context.Background(), "k", fns)
	require.True(t, ok)
	require.Equal(t, "fresh", v)

	_, ok = e.Revalidate(context.Background(), "k", []types.FillFunc[string, string]{empty()})
	require.False(t, ok)
}

func TestCoalescedResolveRunsOnce(t *testing.T) {
	e := New[string, string](true, nil, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	fns := []types.FillFunc[string, string]{
		func(ctx context.Context, key string) (string, bool, error) {
			calls.Add(1)
			<-release
			return "shared", true, nil
		},
	}

	const n = 8
	var wg, entered sync.WaitGroup
	entered.Add(n)
	results := make([]string, n)
	oks := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entered.Done()
			results[i], oks[i] = e.Resolve(context.Background(), "k", fns)
		}(i)
	}

	// Hold the first flight open until every goroutine has had time to
	// join it, then let it complete.
	entered.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load(), "concurrent resolutions of one key must coalesce")
	for i, v := range results {
		require.True(t, oks[i])
		require.Equal(t, "shared", v)
	}
}

func TestUncoalescedResolveMayDuplicate(t *testing.T) {
	e := New[string, string](false, nil, nil)

	var calls atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	fns := []types.FillFunc[string, string]{
		func(ctx context.Context, key string) (string, bool, error) {
			calls.Add(1)
			started <- struct{}{}
			<-release
			return "v", true, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Resolve(context.Background(), "k", fns)
		}()
	}

	// Both flights run the resolver independently.
	<-started
	<-started
	close(release)
	wg.Wait()

	require.Equal(t, int32(2), calls.Load())
}
