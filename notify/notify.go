/*
Package notify provides the transient, self-expiring notification queue.

PURPOSE:
  User-facing messages emitted as a side channel by the advance workflow
  and the voucher marketplace. Notifications are ephemeral: they are never
  persisted, display in insertion order, and remove themselves after a
  fixed interval.

CRITICAL INVARIANTS:
  1. Insertion order = display order.
  2. No two notifications share an id; ids are monotonically derived from
     creation time (ULIDs).
  3. Remove is idempotent - user-initiated dismissal can race with the
     automatic expiry timer, so removing an unknown id is a no-op.
  4. Expiry timers run independently of workflow state and never block
     advance or voucher operations.

USAGE:
  q := notify.NewQueue(5 * time.Second)
  defer q.Close()
  q.Success("Advance approved. Fee: 30.00")

SEE ALSO:
  - advance/workflow.go: Emits success/error notifications
*/
package notify

import (
	"sync"
	"time"

	"github.com/payquick/wage-engine/idgen"
)

// =============================================================================
// NOTIFICATION
// =============================================================================

type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
)

type Notification struct {
	ID        string
	Type      Type
	Message   string
	Timestamp time.Time
}

// DefaultTTL is the reference auto-expiry interval: 5 time units.
const DefaultTTL = 5 * time.Second

// =============================================================================
// QUEUE
// =============================================================================

// Queue is an ordered sequence of notifications with per-notification
// cancellable expiry timers.
type Queue struct {
	mu     sync.Mutex
	items  []Notification
	timers map[string]*time.Timer
	ttl    time.Duration
	closed bool
}

func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
	}
}

// Push appends a notification and schedules its automatic removal.
func (q *Queue) Push(typ Type, message string) Notification {
	now := time.Now().UTC()
	n := Notification{
		ID:        idgen.NewAt(now),
		Type:      typ,
		Message:   message,
		Timestamp: now,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return n
	}

	q.items = append(q.items, n)
	q.timers[n.ID] = time.AfterFunc(q.ttl, func() { q.Remove(n.ID) })
	return n
}

func (q *Queue) Success(message string) Notification { return q.Push(TypeSuccess, message) }
func (q *Queue) Error(message string) Notification   { return q.Push(TypeError, message) }
func (q *Queue) Info(message string) Notification    { return q.Push(TypeInfo, message) }
func (q *Queue) Warning(message string) Notification { return q.Push(TypeWarning, message) }

// Remove deletes a notification and cancels its expiry timer. Removing an
// already-removed or unknown id is a no-op.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}

	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// List returns the current notifications in display order.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close cancels all pending expiry timers. Used at session teardown.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}
