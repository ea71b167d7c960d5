// Package bus provides the cross-goroutine handoff between the physics
// loop and its consumers: a single-slot latest-only queue for snapshot
// data and a signal bus for notifications and control requests.
package bus

import (
	"sync"

	"github.com/rlund/airsusp/internal/dynamo"
	"github.com/rlund/airsusp/internal/telemetry"
)

// LatestQueue is a single-slot, drop-old/keep-newest handoff. Put and
// Get never block beyond a single short mutex hold; an unread item is
// discarded when a newer one arrives. Correctness here means "the
// consumer always eventually sees the most recent output and never a
// backlog", not "the consumer sees every item".
type LatestQueue struct {
	mu      sync.Mutex
	slot    dynamo.Snapshot
	pending bool

	puts  telemetry.Counter
	drops telemetry.Counter
}

func NewLatestQueue() *LatestQueue {
	return &LatestQueue{}
}

// Put stores the snapshot, overwriting any unread predecessor. It
// always succeeds immediately.
func (q *LatestQueue) Put(s dynamo.Snapshot) {
	q.mu.Lock()
	if q.pending {
		q.drops.Increment()
	}
	q.slot = s
	q.pending = true
	q.mu.Unlock()
	q.puts.Increment()
}

// Get returns the pending snapshot and clears the slot. The second
// return is false when nothing is pending. Never blocks.
func (q *LatestQueue) Get() (dynamo.Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.pending {
		return dynamo.Snapshot{}, false
	}
	q.pending = false
	return q.slot, true
}

// QueueStats counts handoff traffic for observability.
type QueueStats struct {
	Puts  uint64
	Drops uint64
}

// Efficiency is the fraction of puts that reached a consumer; 1 when
// nothing has been put yet.
func (s QueueStats) Efficiency() float64 {
	if s.Puts == 0 {
		return 1
	}
	return float64(s.Puts-s.Drops) / float64(s.Puts)
}

func (q *LatestQueue) Stats() QueueStats {
	return QueueStats{Puts: q.puts.Load(), Drops: q.drops.Load()}
}
