package integrators

import (
	"fmt"

	"github.com/rlund/airsusp/internal/dynamo"
)

// RK4 is the classic explicit fourth-order Runge-Kutta scheme. It is
// accurate for the smooth body motion but conditionally stable: with
// stiff strut damping it diverges at the fixed 1 ms step, which is why
// it is not the default (see trbdf2_test.go for the comparison).
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(sys dynamo.System, x dynamo.StateVector, t, dt float64) (dynamo.StateVector, error) {
	k1, err := sys.Derive(x, t)
	if err != nil {
		return dynamo.StateVector{}, err
	}
	k2, err := sys.Derive(x.Add(k1.Scale(dt/2)), t+dt/2)
	if err != nil {
		return dynamo.StateVector{}, err
	}
	k3, err := sys.Derive(x.Add(k2.Scale(dt/2)), t+dt/2)
	if err != nil {
		return dynamo.StateVector{}, err
	}
	k4, err := sys.Derive(x.Add(k3.Scale(dt)), t+dt)
	if err != nil {
		return dynamo.StateVector{}, err
	}

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	next := x.Add(sum.Scale(dt / 6))
	if !next.IsFinite() {
		return dynamo.StateVector{}, fmt.Errorf("rk4 at t=%.4f: %w", t, dynamo.ErrNonFinite)
	}
	return next, nil
}
