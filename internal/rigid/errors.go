package rigid

import "errors"

// Domain errors for model construction and dynamics queries.
var (
	// ErrDimension indicates a state or force vector whose length does not
	// match the model.
	ErrDimension = errors.New("rigid: dimension mismatch")

	// ErrSingular indicates a singular system in a dynamics solve, for
	// example a degenerate mass matrix or redundant contact constraints.
	ErrSingular = errors.New("rigid: singular system")

	// ErrUnknownName indicates a segment, marker or degree-of-freedom name
	// that is not part of the model.
	ErrUnknownName = errors.New("rigid: unknown name")

	// ErrIndexRange indicates a segment, marker, muscle or contact index
	// outside the model's collections.
	ErrIndexRange = errors.New("rigid: index out of range")

	// ErrModelFile indicates a model definition file that could not be read
	// or does not describe a valid model.
	ErrModelFile = errors.New("rigid: invalid model file")

	// ErrNoRoot indicates a floating-base query on a model without root
	// degrees of freedom.
	ErrNoRoot = errors.New("rigid: model has no root degrees of freedom")
)
