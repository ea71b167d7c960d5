package bus

import "sync"

// Control is a consumer-to-physics request. Controls are delivered in
// order and are never dropped, unlike snapshot notifications.
type Control int

const (
	Start Control = iota
	Stop
	Reset
	Shutdown
)

var controlNames = map[Control]string{
	Start:    "start",
	Stop:     "stop",
	Reset:    "reset",
	Shutdown: "shutdown",
}

func (c Control) String() string {
	if s, ok := controlNames[c]; ok {
		return s
	}
	return "control(?)"
}

// Bus carries signalling between the physics goroutine and consumers.
// Snapshot data itself travels via LatestQueue; the bus only wakes the
// consumer ("a fresh snapshot exists", coalescable) and queues control
// requests in the opposite direction (ordered, lossless).
type Bus struct {
	notify chan struct{}

	mu      sync.Mutex
	pending []Control
}

func New() *Bus {
	return &Bus{notify: make(chan struct{}, 1)}
}

// NotifySnapshot signals that a fresh snapshot is available. Repeated
// signals coalesce: the channel holds at most one pending wakeup,
// which is correct because the data is latest-only anyway.
func (b *Bus) NotifySnapshot() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Snapshots is the consumer-side wakeup channel.
func (b *Bus) Snapshots() <-chan struct{} {
	return b.notify
}

// Send enqueues a control request. It never blocks and never drops;
// requests are held in FIFO order until the physics loop drains them.
func (b *Bus) Send(c Control) {
	b.mu.Lock()
	b.pending = append(b.pending, c)
	b.mu.Unlock()
}

// Drain removes and returns all queued control requests in the order
// they were sent. Called by the physics goroutine at the top of each
// tick; returns nil when nothing is queued.
func (b *Bus) Drain() []Control {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	return out
}
