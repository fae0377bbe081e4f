// Package idgen generates lexicographically sortable ULID identifiers.
// IDs are monotonically derived from creation time, so insertion order
// and id order agree even within the same millisecond.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	once    sync.Once
)

func initEntropy() {
	entropy = ulid.Monotonic(rand.Reader, 0)
}

// New returns a new ULID string using the current UTC time.
func New() string {
	return NewAt(time.Now().UTC())
}

// NewAt generates an id at the provided time. Useful for tests.
func NewAt(t time.Time) string {
	once.Do(initEntropy)
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Time extracts the embedded UTC timestamp from an id. Returns the zero
// time for malformed ids.
func Time(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
