// Package telemetry provides the performance counters for the physics
// loop: per-step timing over a bounded recency window and atomic event
// counters. Writes come from the physics goroutine only; reads from
// any goroutine are best-effort consistent, never transactional.
package telemetry

import (
	"sync"
	"time"
)

// DefaultWindow is the number of recent step durations retained.
const DefaultWindow = 256

// StepTimer records recent physics step durations in a fixed ring and
// derives the achieved step rate. The ring mutex guards only the few
// words of ring state; it is never held across a physics step.
type StepTimer struct {
	targetDt float64

	mu     sync.Mutex
	ring   []float64 // seconds
	next   int
	filled int

	Steps    Counter
	Overruns Counter
	Faults   Counter
}

func NewStepTimer(targetDt float64) *StepTimer {
	return &StepTimer{
		targetDt: targetDt,
		ring:     make([]float64, DefaultWindow),
	}
}

// Record adds one step duration to the window and bumps the step count.
func (st *StepTimer) Record(d time.Duration) {
	st.mu.Lock()
	st.ring[st.next] = d.Seconds()
	st.next = (st.next + 1) % len(st.ring)
	if st.filled < len(st.ring) {
		st.filled++
	}
	st.mu.Unlock()
	st.Steps.Increment()
}

// MeanStepTime is the average duration over the recency window.
func (st *StepTimer) MeanStepTime() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.filled == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < st.filled; i++ {
		sum += st.ring[i]
	}
	return sum / float64(st.filled)
}

// FPS is the achieved step rate, the reciprocal of the recent mean
// step duration. Zero until at least one step has been recorded.
func (st *StepTimer) FPS() float64 {
	mean := st.MeanStepTime()
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}

// TargetFPS is the configured step rate, 1/targetDt.
func (st *StepTimer) TargetFPS() float64 {
	if st.targetDt <= 0 {
		return 0
	}
	return 1 / st.targetDt
}

// Report is a point-in-time copy of the timer's figures.
type Report struct {
	Steps     uint64
	Overruns  uint64
	Faults    uint64
	FPS       float64
	TargetFPS float64
}

func (st *StepTimer) Report() Report {
	return Report{
		Steps:     st.Steps.Load(),
		Overruns:  st.Overruns.Load(),
		Faults:    st.Faults.Load(),
		FPS:       st.FPS(),
		TargetFPS: st.TargetFPS(),
	}
}
