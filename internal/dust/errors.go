package dust

import (
	"errors"
	"fmt"
)

// Sentinel conditions raised by force models and backends.
var (
	// ErrBoundary indicates a grain entered the forbidden region behind
	// the ionopause. It is a designed terminal state, not a failure.
	ErrBoundary = errors.New("dust: grain inside ionopause boundary")

	// ErrSingularAxis indicates a grain reached the symmetry axis of the
	// ionopause model, where the pileup field is undefined.
	ErrSingularAxis = errors.New("dust: grain on ionopause symmetry axis")

	// ErrInvalidState indicates a NaN or Inf appeared in a state vector.
	ErrInvalidState = errors.New("dust: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the particle, step and time at which it
// occurred.
type StepError struct {
	Particle int
	Step     int
	Time     float64
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("particle %d step %d (t=%.6g): %v", e.Particle, e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
