package dust

import (
	"fmt"
	"math"
)

// State is the phase-space vector of a single grain:
// (x, y, z, vx, vy, vz). Units are SI unless the force model documents
// otherwise (the ionopause model works in its own legacy-consistent
// units).
type State [6]float64

func (s State) Position() (x, y, z float64) { return s[0], s[1], s[2] }
func (s State) Velocity() (vx, vy, vz float64) { return s[3], s[4], s[5] }

// Radius returns the distance from the origin.
func (s State) Radius() float64 {
	return math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
}

// Speed returns the magnitude of the velocity.
func (s State) Speed() float64 {
	return math.Sqrt(s[3]*s[3] + s[4]*s[4] + s[5]*s[5])
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model is the force model contract. Derive returns the state
// derivative (velocity, acceleration) for particle i at time t.
//
// A boundary violation is reported as ErrBoundary and an axis
// singularity as ErrSingularAxis; any other error aborts the run.
type Model interface {
	Name() string

	// Particles reports how many per-particle coefficient sets the
	// model was built with; the ensemble size must match.
	Particles() int

	Derive(i int, s State, t float64) (State, error)
}

// TimeGrid describes the reporting grid of one run. Dt is the reporting
// interval, Steps the number of reported steps, and Substeps the number
// of internal RK4 iterations per reported step (0 means 1).
type TimeGrid struct {
	Dt       float64
	Steps    int
	Substeps int
}

func (g TimeGrid) Validate() error {
	if g.Dt <= 0 {
		return fmt.Errorf("dust: dt must be positive, got %g", g.Dt)
	}
	if g.Steps < 1 {
		return fmt.Errorf("dust: step count must be at least 1, got %d", g.Steps)
	}
	if g.Substeps < 0 {
		return fmt.Errorf("dust: substep count must not be negative, got %d", g.Substeps)
	}
	return nil
}

// Normalize returns the grid with Substeps defaulted to 1.
func (g TimeGrid) Normalize() TimeGrid {
	if g.Substeps < 1 {
		g.Substeps = 1
	}
	return g
}

// Times returns the reported time stamps, Steps+1 values starting at 0.
func (g TimeGrid) Times() []float64 {
	ts := make([]float64, g.Steps+1)
	for k := range ts {
		ts[k] = float64(k) * g.Dt
	}
	return ts
}
