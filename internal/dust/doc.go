// Package dust provides the core primitives for dust grain trajectory
// integration.
//
// The package defines the fundamental types shared by every backend:
//
//   - [State]: the 6-component phase-space vector of one grain
//   - [Model]: interface for force models (dX/dt = f(X, t))
//   - [TimeGrid]: reporting step size, step count and sub-step count
//   - [Trajectory]: the dense output buffer of one integration run
//   - [Result]: trajectory plus run status and per-particle lengths
//
// Boundary crossing and axis singularities are signaled by force models
// through the sentinel errors [ErrBoundary] and [ErrSingularAxis]; the
// backends translate the former into a terminal run status and wrap the
// latter in a [StepError] carrying particle, step and time context.
//
// # Thread Safety
//
// Models and grids are immutable once constructed and safe to share
// across goroutines. Trajectory columns are disjoint per particle, so
// concurrent per-particle writes need no synchronization.
package dust
