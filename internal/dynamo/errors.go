package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidHandle indicates a handle that is out of range or refers to a freed slot.
	ErrInvalidHandle = errors.New("dynamo: invalid body handle")

	// ErrInvalidMass indicates a negative or non-finite inverse mass.
	ErrInvalidMass = errors.New("dynamo: inverse mass must be finite and >= 0")

	// ErrInvalidDamping indicates a damping factor outside (0, 1].
	ErrInvalidDamping = errors.New("dynamo: damping must be in (0, 1]")

	// ErrDegenerateGeometry indicates coincident spring endpoints or a zero-length separating axis.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate geometry")

	// ErrNonPositiveDt indicates a time step that is zero, negative or not finite.
	ErrNonPositiveDt = errors.New("dynamo: dt must be positive and finite")

	// ErrBodyInUse indicates an attempt to remove a body still referenced by a spring.
	ErrBodyInUse = errors.New("dynamo: body is referenced by a spring")

	// ErrInvalidSpring indicates a spring with bad parameters or identical endpoints.
	ErrInvalidSpring = errors.New("dynamo: invalid spring")

	// ErrInvalidState indicates a body state that became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// StepError wraps a fatal error with the tick it happened on.
type StepError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
