// Package integrators provides fixed-step ODE schemes for the body
// dynamics. TRBDF2 is the default: the strut gas/orifice dynamics are
// one to two orders of magnitude faster than the body motion, so a
// stiffly-stable implicit method is required; RK4 is kept for
// comparison runs and benchmarks only.
package integrators

import "github.com/rlund/airsusp/internal/dynamo"

// Stepper advances the state by one fixed timestep. Implementations
// never return a non-finite state: any NaN/Inf or convergence failure
// comes back as an error instead.
type Stepper interface {
	Name() string
	Step(sys dynamo.System, x dynamo.StateVector, t, dt float64) (dynamo.StateVector, error)
}
