package loop

import (
	"math"
	"testing"
)

func TestAccumulator_WholeSteps(t *testing.T) {
	a := NewAccumulator(0.001)

	if got := a.Update(0.0035); got != 3 {
		t.Errorf("Update(0.0035) = %d, want 3", got)
	}
	if r := a.Pending(); math.Abs(r-0.0005) > 1e-12 {
		t.Errorf("remainder = %v, want 0.0005", r)
	}

	// The carried remainder tops up the next call.
	if got := a.Update(0.0006); got != 1 {
		t.Errorf("Update(0.0006) = %d, want 1 (carry)", got)
	}
}

func TestAccumulator_RemainderInvariant(t *testing.T) {
	const dt = 0.001
	a := NewAccumulator(dt)

	inputs := []float64{0.017, 0.0001, 0.0009, 1.5, 0.00099999, 0.0333, 0, 0.0021}
	for _, in := range inputs {
		a.Update(in)
		if r := a.Pending(); r < 0 || r >= dt {
			t.Fatalf("remainder %v outside [0, %v) after Update(%v)", r, dt, in)
		}
	}
}

// Over any call sequence summing to T, delivered step time stays
// within one dt of T: nothing skipped, nothing double-counted.
func TestAccumulator_ConservesTime(t *testing.T) {
	const dt = 0.001
	a := NewAccumulator(dt)

	total := 0.0
	delivered := 0
	for i := 0; i < 1000; i++ {
		in := 0.0007 + 0.0011*float64(i%5)
		total += in
		delivered += a.Update(in)
	}

	stepTime := float64(delivered) * dt
	if stepTime > total+1e-9 || stepTime < total-dt-1e-9 {
		t.Errorf("delivered %v s of steps for %v s of input", stepTime, total)
	}
}

func TestAccumulator_IgnoresBadElapsed(t *testing.T) {
	a := NewAccumulator(0.001)

	for _, in := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := a.Update(in); got != 0 {
			t.Errorf("Update(%v) = %d, want 0", in, got)
		}
		if r := a.Pending(); r != 0 {
			t.Errorf("Update(%v) leaked into remainder: %v", in, r)
		}
	}
}

func TestAccumulator_Drain(t *testing.T) {
	a := NewAccumulator(0.001)
	a.Update(0.0004)

	if got := a.Drain(); math.Abs(got-0.0004) > 1e-12 {
		t.Errorf("Drain() = %v, want 0.0004", got)
	}
	if a.Pending() != 0 {
		t.Error("Drain did not clear the remainder")
	}
}
