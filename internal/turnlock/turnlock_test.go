package turnlock_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkivisto/legalintake/internal/turnlock"
)

func TestGuard(t *testing.T) {
	guard := turnlock.New[int64]()

	require.True(t, guard.TryAcquire(1), "first acquire should succeed")
	require.False(t, guard.TryAcquire(1), "second acquire for same key should fail")
	require.True(t, guard.TryAcquire(2), "different key should be independent")

	guard.Release(1)
	require.True(t, guard.TryAcquire(1), "acquire after release should succeed")

	// Releasing an unclaimed key must not panic or free another slot.
	guard.Release(3)
	require.False(t, guard.TryAcquire(1))
}

func TestGuardConcurrent(t *testing.T) {
	guard := turnlock.New[int64]()
	var (
		wins int64
		wg   sync.WaitGroup
	)

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryAcquire(42) {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins, "exactly one goroutine should win the slot")
}
