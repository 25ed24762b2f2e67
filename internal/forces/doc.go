// Package forces provides the dust force models.
//
// Each model implements the [dust.Model] interface, returning the
// 6-component state derivative (velocity, acceleration) of one grain:
//
//   - [UniformField]: heliospheric model — gravity scaled by (1-beta)
//     plus a Lorentz force from constant E and B fields
//   - [Ionopause]: interstellar model — gravity/radiation folded into
//     per-grain constants C1/C2, field computed from the magnetic
//     pileup around the ionopause standoff surface
//
// The ionopause surface doubles as the boundary monitor: every
// derivative evaluation checks the surface function S and signals
// [dust.ErrBoundary] when the grain is inside the forbidden region, so
// a violation mid-substep still truncates promptly.
package forces
