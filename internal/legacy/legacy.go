// Package legacy reads and writes the historical line-oriented text
// format of the single-grain ionopause integrator, kept for drop-in
// compatibility with existing input and output files.
package legacy

import (
	"fmt"
	"io"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/forces"
	"github.com/nkoval/dustsim/internal/grain"
)

// Input is one legacy run description: a single grain, the ionopause
// field parameters, the initial state and the time grid.
type Input struct {
	Grain grain.Grain

	C  float64 // speed of light
	D  float64 // solar distance
	Sd float64 // solar constant
	B0 float64
	Z0 float64
	V0 float64

	T0    float64
	State dust.State

	Dt    float64
	Steps int
}

// Read parses a legacy input stream: material name, density, diameter;
// {c, d, Sd, B0, z0, v0}; initial {t, x, y, z, vx, vy, vz};
// {dt, step count}. Tokens are whitespace separated; line breaks carry
// no meaning.
func Read(r io.Reader) (*Input, error) {
	in := &Input{}
	var material string

	_, err := fmt.Fscan(r,
		&material, &in.Grain.Density, &in.Grain.Diameter,
		&in.C, &in.D, &in.Sd, &in.B0, &in.Z0, &in.V0,
		&in.T0,
		&in.State[0], &in.State[1], &in.State[2],
		&in.State[3], &in.State[4], &in.State[5],
		&in.Dt, &in.Steps,
	)
	if err != nil {
		return nil, fmt.Errorf("legacy: malformed input: %w", err)
	}
	in.Grain.Material = grain.Material(material)

	if in.Dt <= 0 {
		return nil, fmt.Errorf("legacy: dt must be positive, got %g", in.Dt)
	}
	if in.Steps < 1 {
		return nil, fmt.Errorf("legacy: step count must be at least 1, got %d", in.Steps)
	}
	// Reject unknown materials before the run starts.
	if _, _, err := grain.Coefficients(in.Grain.Material, in.Grain.Diameter); err != nil {
		return nil, err
	}
	return in, nil
}

// Model builds the single-grain ionopause force model of this input.
func (in *Input) Model() (*forces.Ionopause, error) {
	return forces.NewIonopauseFromGrains(in.C, in.B0, in.V0, in.Z0, in.D, in.Sd, []grain.Grain{in.Grain})
}

func (in *Input) Grid() dust.TimeGrid {
	return dust.TimeGrid{Dt: in.Dt, Steps: in.Steps}
}

// Write echoes the initial conditions and emits the fixed-width
// trajectory table in the legacy column order
// (t, vx, ux, vy, uy, vz, uz).
func Write(w io.Writer, in *Input, res *dust.Result) error {
	mass, c1, c2, err := in.Grain.Constants(in.C, in.D, in.Sd)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, " material %10s\n", in.Grain.Material)
	fmt.Fprintf(w, " density  %14.6E  diameter %14.6E  mass %14.6E\n", in.Grain.Density, in.Grain.Diameter, mass)
	fmt.Fprintf(w, " c  %14.6E  d  %14.6E  Sd %14.6E\n", in.C, in.D, in.Sd)
	fmt.Fprintf(w, " B0 %14.6E  z0 %14.6E  v0 %14.6E\n", in.B0, in.Z0, in.V0)
	fmt.Fprintf(w, " C1 %14.6E  C2 %14.6E\n", c1, c2)
	fmt.Fprintf(w, " dt %14.6E  steps %8d\n", in.Dt, in.Steps)
	fmt.Fprintf(w, "%14s%14s%14s%14s%14s%14s%14s\n", "t", "vx", "ux", "vy", "uy", "vz", "uz")

	last := res.ValidLen[0]
	for k := 0; k <= last; k++ {
		s := res.Traj.At(k, 0)
		t := in.T0 + float64(k)*in.Dt
		if _, err := fmt.Fprintf(w, "%14.6E%14.6E%14.6E%14.6E%14.6E%14.6E%14.6E\n",
			t, s[3], s[0], s[4], s[1], s[5], s[2]); err != nil {
			return err
		}
	}

	if res.Status == dust.StatusTerminated {
		fmt.Fprintf(w, " STOP: grain crossed the ionopause after step %d\n", last)
	}
	return nil
}
