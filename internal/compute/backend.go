// Package compute provides the interchangeable integration backends.
//
// Every backend implements the same contract: given a force model, an
// initial ensemble and a time grid, produce the same trajectory buffer
// within numerical tolerance. The scalar backend is the reference; the
// vector and accelerator backends must match it (see the consistency
// test suite).
package compute

import (
	"context"
	"fmt"

	"github.com/nkoval/dustsim/internal/dust"
)

type Backend interface {
	Name() string
	Available() bool

	// Run integrates the ensemble over the grid. The returned Result is
	// owned by the caller. Cancellation is honored between reporting
	// steps and yields StatusCanceled with the partial buffer.
	Run(ctx context.Context, m dust.Model, initial []dust.State, grid dust.TimeGrid) (*dust.Result, error)
}

// Backends returns all known backends, available or not.
func Backends() []Backend {
	return []Backend{NewScalar(), NewVector(), NewAccel()}
}

// Select returns the named backend, or an error if it is unknown or not
// available in this build.
func Select(name string) (Backend, error) {
	for _, b := range Backends() {
		if b.Name() == name {
			if !b.Available() {
				return nil, fmt.Errorf("compute: backend %q is not available in this build", name)
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("compute: unknown backend %q", name)
}

// AutoSelect prefers the accelerator when available and otherwise falls
// back to the scalar reference backend.
func AutoSelect() Backend {
	if a := NewAccel(); a.Available() {
		return a
	}
	return NewScalar()
}
