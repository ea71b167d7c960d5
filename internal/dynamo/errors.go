package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for the physics core.
var (
	// ErrNotConverged indicates the implicit solver did not converge
	// within its iteration limit.
	ErrNotConverged = errors.New("dynamo: solver did not converge")

	// ErrNonFinite indicates a NaN or Inf appeared during integration.
	ErrNonFinite = errors.New("dynamo: non-finite value in state")

	// ErrAngleLimit indicates a computed snapshot exceeded the roll or
	// pitch bound and was rejected before publication.
	ErrAngleLimit = errors.New("dynamo: roll or pitch beyond angle limit")

	// ErrBadParams indicates invalid rigid-body or strut parameters.
	ErrBadParams = errors.New("dynamo: invalid parameters")
)

// IntegrationError wraps a failed fixed step with solver diagnostics.
// The loop converts it into a structured tick result; it is never
// allowed to escape the physics goroutine as a panic.
type IntegrationError struct {
	Step     uint64
	Time     float64
	Residual float64
	Iters    int
	Wrapped  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v (residual=%.3e after %d iterations)",
		e.Step, e.Time, e.Wrapped, e.Residual, e.Iters)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
