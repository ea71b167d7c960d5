// Package dynamo provides the core value types for the suspension
// physics engine:
//
//   - [StateVector]: fixed-shape 6-DOF state (heave, roll, pitch + rates)
//   - [Snapshot]: immutable per-step record handed to consumers
//   - [NetLoad]: corner forces projected onto the body axes
//   - [System]: interface for the body ODE (dX/dt = f(X, t))
//
// # Thread Safety
//
// StateVector and NetLoad are plain values owned by the physics
// goroutine. Snapshot is immutable once constructed and is the only
// type that crosses the goroutine boundary.
package dynamo
