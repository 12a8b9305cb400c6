package sim

import "errors"

// Domain errors for simulation runs.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrBadConfig indicates a non-positive timestep or duration.
	ErrBadConfig = errors.New("sim: invalid run configuration")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and dynamics")
)

// StepError wraps an error with the step it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string { return e.Wrapped.Error() }

func (e *StepError) Unwrap() error { return e.Wrapped }
