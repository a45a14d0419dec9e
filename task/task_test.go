package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGoRunsDetached(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detached task never ran")
	}
}

func TestRunnerCloseDrains(t *testing.T) {
	r := NewRunner()

	var ran atomic.Int32
	release := make(chan struct{})
	for i := 0; i < 5; i++ {
		r.Spawn(func() {
			<-release
			ran.Add(1)
		})
	}

	close(release)
	r.Close()

	require.Equal(t, int32(5), ran.Load(), "Close must wait for in-flight tasks")
}

func TestRunnerDropsAfterClose(t *testing.T) {
	r := NewRunner()
	r.Close()

	var ran atomic.Bool
	r.Spawn(func() { ran.Store(true) })

	// Spawn after Close is a silent drop; give a stray goroutine a moment
	// to prove us wrong.
	time.Sleep(20 * time.Millisecond)
	require.False(t, ran.Load())
}

func TestRunnerCloseTwice(t *testing.T) {
	r := NewRunner()
	r.Spawn(func() {})
	r.Close()
	r.Close()
}

func TestRunnerSatisfiesSpawner(t *testing.T) {
	var _ Spawner = NewRunner().Spawn
}
