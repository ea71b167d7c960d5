package loop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rlund/airsusp/internal/bus"
	"github.com/rlund/airsusp/internal/dynamo"
)

// FaultPolicy decides what the runner does when a tick reports a
// failed step. The loop itself only reports; policy is a caller-level
// concern.
type FaultPolicy int

const (
	// FaultHalt pauses stepping until a Start control arrives.
	FaultHalt FaultPolicy = iota
	// FaultReset rewinds to the last valid state and keeps stepping.
	FaultReset
)

func ParseFaultPolicy(s string) (FaultPolicy, error) {
	switch s {
	case "halt":
		return FaultHalt, nil
	case "reset", "":
		return FaultReset, nil
	default:
		return 0, fmt.Errorf("%w: unknown fault policy %q", dynamo.ErrBadParams, s)
	}
}

// DefaultTickInterval is the wall-clock cadence of the physics
// goroutine. With a 1 ms physics dt this targets one step per tick.
const DefaultTickInterval = time.Millisecond

// Runner hosts a Loop on a dedicated goroutine driven by a wall-clock
// ticker. Control requests (start/stop/reset/shutdown) are drained in
// order at the top of each tick and never mid-step, so a stop can
// never expose a partially built snapshot.
type Runner struct {
	loop     *Loop
	interval time.Duration
	policy   FaultPolicy
	initial  dynamo.StateVector

	stepping atomic.Bool
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	started  bool

	mu        sync.Mutex
	lastFault error
}

func NewRunner(l *Loop, interval time.Duration, policy FaultPolicy) *Runner {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Runner{
		loop:     l,
		interval: interval,
		policy:   policy,
		initial:  l.State(),
	}
}

// Go starts the physics goroutine. Stepping begins paused; send a
// Start control (or call with an already-started loop) to begin.
func (r *Runner) Go(ctx context.Context) {
	if r.started {
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Close requests shutdown and waits for the goroutine to exit.
func (r *Runner) Close() {
	if !r.started {
		return
	}
	r.loop.Signals().Send(bus.Shutdown)
	r.cancel()
	r.wg.Wait()
}

// Stepping reports whether the loop is currently advancing.
func (r *Runner) Stepping() bool { return r.stepping.Load() }

// LastFault returns the most recent step failure, or nil. Faults are
// counted in the loop's timer as well; they are reported here, never
// panicked across the goroutine boundary.
func (r *Runner) LastFault() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFault
}

func (r *Runner) setFault(err error) {
	r.mu.Lock()
	r.lastFault = err
	r.mu.Unlock()
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, c := range r.loop.Signals().Drain() {
			switch c {
			case bus.Start:
				// Discard the pause interval so resuming does not
				// replay it as a burst of steps.
				last = time.Now()
				r.stepping.Store(true)
			case bus.Stop:
				r.stepping.Store(false)
			case bus.Reset:
				r.loop.Reset(r.initial)
				r.setFault(nil)
				last = time.Now()
			case bus.Shutdown:
				return
			}
		}

		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		last = now

		if !r.stepping.Load() {
			continue
		}

		res := r.loop.Tick(elapsed)
		if res.Err != nil {
			r.setFault(res.Err)
			switch r.policy {
			case FaultReset:
				r.loop.ResetToLastValid()
			case FaultHalt:
				r.stepping.Store(false)
			}
		}
	}
}
