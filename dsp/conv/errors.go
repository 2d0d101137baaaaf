package conv

import "errors"

var (
	// ErrResponseTooLong is returned when an impulse response exceeds the
	// capacity fixed at construction.
	ErrResponseTooLong = errors.New("conv: response length exceeds capacity")

	// ErrInvalidBlockSize is returned when a zero or negative block size
	// is supplied at construction.
	ErrInvalidBlockSize = errors.New("conv: block size must be positive")

	// ErrLengthMismatch is returned when input and output buffers passed to
	// Process do not have equal, non-empty length.
	ErrLengthMismatch = errors.New("conv: input and output length mismatch")

	// ErrInvalidTransition is returned when a transition_samples parameter
	// is too short relative to the response capacity it must cover.
	ErrInvalidTransition = errors.New("conv: transition length shorter than response capacity")
)
