package hashmap

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalMapCompute(t *testing.T) {
	counters := NewNormal[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counters.Compute("a", func(current int, _ bool) int {
				return current + 1
			})
		}()
	}
	wg.Wait()

	val, ok := counters.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 50, val)

	counters.Unset("a")
	_, ok = counters.Lookup("a")
	assert.False(t, ok)
	assert.Zero(t, counters.Size())
}

func TestExpiringMapLookupHidesExpired(t *testing.T) {
	values := NewExpiring[string, int](10 * time.Millisecond)
	values.Compute("a", func(int, bool) int { return 1 })

	val, ok := values.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, val)

	time.Sleep(20 * time.Millisecond)
	_, ok = values.Lookup("a")
	assert.False(t, ok)
}

func TestExpiringMapComputeKeepsLifetime(t *testing.T) {
	values := NewExpiring[string, int](30 * time.Millisecond)

	increment := func(current int, _ bool) int {
		return current + 1
	}
	values.Compute("a", increment)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, values.Compute("a", increment))

	// The second Compute must not have restarted the lifetime
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, values.Compute("a", increment))
}

func TestExpiringMapCleanupTask(t *testing.T) {
	values := NewExpiring[string, int](5 * time.Millisecond)
	values.ScheduleCleanupTask(5 * time.Millisecond)
	defer values.StopCleanupTask()

	values.Compute("a", func(int, bool) int { return 1 })
	assert.Eventually(t, func() bool {
		return values.Size() == 0
	}, time.Second, 5*time.Millisecond)
}
