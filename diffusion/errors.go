package diffusion

import "errors"

var (
	// ErrInvalidCoefficient is returned for a non-positive diffusion coefficient.
	ErrInvalidCoefficient = errors.New("diffusion coefficient must be positive")
	// ErrInvalidBoxLength is returned for a non-positive box length.
	ErrInvalidBoxLength = errors.New("box length must be positive")
	// ErrInvalidDecay is returned for a decay constant outside [0, 1].
	ErrInvalidDecay = errors.New("decay constant must be within [0, 1]")
	// ErrInvalidThreshold is returned for a negative or NaN concentration cap.
	ErrInvalidThreshold = errors.New("concentration threshold must be non-negative")
	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("grid already initialized")
)
