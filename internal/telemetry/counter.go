package telemetry

import "sync/atomic"

// Counter is a cross-goroutine event counter. All operations are
// single-word atomics; it is safe to bump from the physics goroutine
// and read from anywhere without a lock.
type Counter struct {
	n atomic.Uint64
}

func (c *Counter) Increment() { c.n.Add(1) }

func (c *Counter) Add(delta uint64) { c.n.Add(delta) }

func (c *Counter) Load() uint64 { return c.n.Load() }

// Reset zeroes the counter and returns the previous value.
func (c *Counter) Reset() uint64 { return c.n.Swap(0) }
