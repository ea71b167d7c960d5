// Package loop orchestrates the fixed-timestep physics: it turns
// real-time ticks into zero or more integration steps, validates and
// publishes snapshots, and keeps the run statistics. The Runner hosts
// a Loop on a dedicated goroutine.
package loop

import (
	"fmt"
	"time"

	"github.com/rlund/airsusp/internal/bus"
	"github.com/rlund/airsusp/internal/dynamo"
	"github.com/rlund/airsusp/internal/integrators"
	"github.com/rlund/airsusp/internal/telemetry"
)

const (
	DefaultDt              = 0.001 // s, 1 kHz physics
	DefaultMaxStepsPerTick = 32
)

// Config is the fixed-timestep policy for one Loop.
type Config struct {
	Dt              float64
	MaxStepsPerTick int
	AngleLimit      float64
}

func DefaultLoopConfig() Config {
	return Config{
		Dt:              DefaultDt,
		MaxStepsPerTick: DefaultMaxStepsPerTick,
		AngleLimit:      dynamo.DefaultAngleLimit,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt %f must be positive", dynamo.ErrBadParams, c.Dt)
	}
	if c.MaxStepsPerTick <= 0 {
		return fmt.Errorf("%w: max steps per tick %d must be positive", dynamo.ErrBadParams, c.MaxStepsPerTick)
	}
	return nil
}

// TickResult is the structured outcome of one real-time tick. Failures
// inside a step are reported here, never raised across the goroutine
// boundary.
type TickResult struct {
	Steps   int
	Overrun bool
	Err     error
}

// Loop owns the simulation state and advances it by whole fixed steps.
// Not safe for concurrent use; exactly one goroutine drives Tick.
type Loop struct {
	sys     dynamo.System
	stepper integrators.Stepper
	cfg     Config
	acc     *Accumulator

	queue   *bus.LatestQueue
	signals *bus.Bus
	timer   *telemetry.StepTimer

	state     dynamo.StateVector
	lastValid dynamo.StateVector
	simTime   float64
	step      uint64

	// onSnapshot, when set, observes every published snapshot on the
	// physics goroutine. Used by headless runs to record trajectories.
	onSnapshot func(dynamo.Snapshot)
}

func New(sys dynamo.System, stepper integrators.Stepper, cfg Config) (*Loop, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.AngleLimit <= 0 {
		cfg.AngleLimit = dynamo.DefaultAngleLimit
	}
	return &Loop{
		sys:     sys,
		stepper: stepper,
		cfg:     cfg,
		acc:     NewAccumulator(cfg.Dt),
		queue:   bus.NewLatestQueue(),
		signals: bus.New(),
		timer:   telemetry.NewStepTimer(cfg.Dt),
	}, nil
}

func (l *Loop) Queue() *bus.LatestQueue      { return l.queue }
func (l *Loop) Signals() *bus.Bus            { return l.signals }
func (l *Loop) Timer() *telemetry.StepTimer  { return l.timer }
func (l *Loop) State() dynamo.StateVector    { return l.state }
func (l *Loop) SimTime() float64             { return l.simTime }
func (l *Loop) StepCount() uint64            { return l.step }
func (l *Loop) Dt() float64                  { return l.cfg.Dt }
func (l *Loop) OnSnapshot(fn func(dynamo.Snapshot)) { l.onSnapshot = fn }

// Reset rewinds the loop to the given state at t=0, dropping any
// accumulated time.
func (l *Loop) Reset(x0 dynamo.StateVector) {
	l.state = x0
	l.lastValid = x0
	l.simTime = 0
	l.step = 0
	l.acc.Drain()
}

// ResetToLastValid rewinds only the state vector to the most recent
// one that passed validation; time and step counter keep running.
func (l *Loop) ResetToLastValid() {
	l.state = l.lastValid
}

// Tick performs the fixed steps owed for dtReal seconds of wall time,
// up to the per-tick ceiling. When the ceiling is hit the remaining
// accumulated time is dropped and the overrun counter bumped: under
// severe overload simulation time deliberately falls behind wall time
// instead of spiralling.
//
// A failed step (no convergence, non-finite result, or a snapshot that
// fails validation) halts further stepping within the tick and is
// reported in the result. Nothing half-built ever reaches the queue.
func (l *Loop) Tick(dtReal float64) TickResult {
	var res TickResult

	steps := l.acc.Update(dtReal)
	if steps > l.cfg.MaxStepsPerTick {
		steps = l.cfg.MaxStepsPerTick
		l.acc.Drain()
		l.timer.Overruns.Increment()
		res.Overrun = true
	}

	for i := 0; i < steps; i++ {
		begin := time.Now()

		next, err := l.stepper.Step(l.sys, l.state, l.simTime, l.cfg.Dt)
		if err != nil {
			l.timer.Faults.Increment()
			res.Err = err
			break
		}

		l.state = next
		l.simTime += l.cfg.Dt
		l.step++

		snap := dynamo.Snapshot{
			SimTime: l.simTime,
			Step:    l.step,
			Frame: dynamo.FrameState{
				Heave: next.Heave,
				Roll:  next.Roll,
				Pitch: next.Pitch,
			},
		}
		if !snap.Validate(l.cfg.AngleLimit) {
			l.timer.Faults.Increment()
			res.Err = fmt.Errorf("step %d (t=%.4f): %w", l.step, l.simTime, dynamo.ErrAngleLimit)
			break
		}

		l.lastValid = next
		l.queue.Put(snap)
		l.signals.NotifySnapshot()
		if l.onSnapshot != nil {
			l.onSnapshot(snap)
		}

		l.timer.Record(time.Since(begin))
		res.Steps++
	}

	return res
}
