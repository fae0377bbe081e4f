package notify_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/notify"
)

func TestPush_InsertionOrderIsDisplayOrder(t *testing.T) {
	q := notify.NewQueue(time.Minute)
	defer q.Close()

	q.Info("first")
	q.Warning("second")
	q.Error("third")

	items := q.List()
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].Message)
	assert.Equal(t, "second", items[1].Message)
	assert.Equal(t, "third", items[2].Message)

	// Ids are monotonically derived from creation time.
	assert.Less(t, items[0].ID, items[1].ID)
	assert.Less(t, items[1].ID, items[2].ID)
}

func TestPush_AutoExpires(t *testing.T) {
	// GIVEN: A queue with a 50ms expiry (5 units of 10ms)
	// THEN: A notification pushed at T is present at T+4 units and absent at T+6

	q := notify.NewQueue(50 * time.Millisecond)
	defer q.Close()

	q.Success("earned wages advanced")

	time.Sleep(40 * time.Millisecond) // T+4 units
	assert.Len(t, q.List(), 1, "should still be visible before expiry")

	time.Sleep(20 * time.Millisecond) // T+6 units
	assert.Empty(t, q.List(), "should have expired")
}

func TestRemove_Idempotent(t *testing.T) {
	// User-initiated dismissal can race with the automatic timer, so
	// removing an already-removed or unknown id must be a no-op.

	q := notify.NewQueue(time.Minute)
	defer q.Close()

	n := q.Info("dismiss me")
	q.Remove(n.ID)
	assert.Empty(t, q.List())

	q.Remove(n.ID)        // second removal
	q.Remove("no-such-id") // unknown id
	assert.Empty(t, q.List())
}

func TestRemove_CancelsTimerRaceFree(t *testing.T) {
	// Manual dismissal immediately before the timer fires must not panic
	// or corrupt the queue.

	q := notify.NewQueue(10 * time.Millisecond)
	defer q.Close()

	for i := 0; i < 50; i++ {
		n := q.Info(fmt.Sprintf("n-%d", i))
		go q.Remove(n.ID)
	}

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, q.List())
}

func TestQueue_ConcurrentPushersUniqueIDs(t *testing.T) {
	q := notify.NewQueue(time.Minute)
	defer q.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				q.Info("burst")
			}
		}()
	}
	wg.Wait()

	items := q.List()
	require.Len(t, items, 500)

	seen := make(map[string]bool, len(items))
	for _, n := range items {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestClose_StopsTimers(t *testing.T) {
	q := notify.NewQueue(time.Minute)
	q.Info("pending")
	q.Close()
	assert.Empty(t, q.List())

	// Pushing after close is a no-op rather than a leak.
	q.Info("late")
	assert.Empty(t, q.List())
}
