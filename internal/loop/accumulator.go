package loop

import "math"

// Accumulator converts irregular wall-clock elapsed time into a whole
// number of fixed physics steps, carrying the fractional remainder
// across calls. Owned exclusively by the goroutine driving the loop.
type Accumulator struct {
	dt        float64
	remainder float64
}

func NewAccumulator(dt float64) *Accumulator {
	return &Accumulator{dt: dt}
}

// Update adds elapsed seconds to the carried remainder and returns the
// number of whole steps now due. Non-positive or non-finite elapsed
// values contribute nothing. The remainder stays in [0, dt): no step
// is skipped or double-counted across calls, and the undelivered
// residual is always less than one dt.
func (a *Accumulator) Update(elapsed float64) int {
	if elapsed > 0 && !math.IsInf(elapsed, 0) {
		a.remainder += elapsed
	}
	steps := int(a.remainder / a.dt)
	a.remainder -= float64(steps) * a.dt
	if a.remainder < 0 {
		a.remainder = 0
	}
	return steps
}

// Pending is the carried remainder in seconds.
func (a *Accumulator) Pending() float64 { return a.remainder }

// Drain discards the carried remainder and returns it. Used by the
// overrun policy: after a stall the loop drops the backlog instead of
// trying to catch up.
func (a *Accumulator) Drain() float64 {
	r := a.remainder
	a.remainder = 0
	return r
}
