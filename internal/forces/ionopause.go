package forces

import (
	"fmt"
	"math"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/grain"
)

// axisEps is the cylindrical radius below which the pileup field
// coefficient B0*v0/(c*r) is considered singular.
const axisEps = 1e-12

// Ionopause is the interstellar force model. The gravity/radiation
// balance is folded into the per-grain constants C1 and C2 (see
// grain.Constants); the electric field follows from the magnetic pileup
// around the standoff surface at distance Z0. Units are the mixed legacy
// units the constants were derived in.
type Ionopause struct {
	C  float64 // speed of light
	B0 float64 // far-field magnetic strength
	V0 float64 // plasma speed
	Z0 float64 // standoff distance

	// Per-particle force constants, one entry per grain.
	C1 []float64
	C2 []float64
}

func NewIonopause(c, b0, v0, z0 float64, c1, c2 []float64) (*Ionopause, error) {
	if c <= 0 {
		return nil, fmt.Errorf("forces: speed of light must be positive, got %g", c)
	}
	if z0 <= 0 {
		return nil, fmt.Errorf("forces: standoff distance must be positive, got %g", z0)
	}
	if len(c1) == 0 {
		return nil, fmt.Errorf("forces: ionopause model needs at least one particle")
	}
	if len(c1) != len(c2) {
		return nil, fmt.Errorf("forces: c1 length %d does not match c2 length %d", len(c1), len(c2))
	}
	return &Ionopause{C: c, B0: b0, V0: v0, Z0: z0, C1: c1, C2: c2}, nil
}

// NewIonopauseFromGrains derives C1/C2 for each grain from its material
// fit. d is the solar distance and sd the solar constant feeding the
// radiation term. Fails fast on an unknown material.
func NewIonopauseFromGrains(c, b0, v0, z0, d, sd float64, grains []grain.Grain) (*Ionopause, error) {
	c1 := make([]float64, len(grains))
	c2 := make([]float64, len(grains))
	for i, g := range grains {
		_, k1, k2, err := g.Constants(c, d, sd)
		if err != nil {
			return nil, fmt.Errorf("forces: grain %d: %w", i, err)
		}
		c1[i] = k1
		c2[i] = k2
	}
	return NewIonopause(c, b0, v0, z0, c1, c2)
}

func (f *Ionopause) Name() string   { return "ionopause" }
func (f *Ionopause) Particles() int { return len(f.C1) }

// Surface evaluates the ionopause surface function S at a position.
// S > 0 outside the ionopause, S <= 0 inside the forbidden region.
func (f *Ionopause) Surface(s dust.State) float64 {
	ux, uy, uz := s[0], s[1], s[2]
	r2 := ux*ux + uy*uy
	r1 := math.Sqrt(r2 + uz*uz)
	return r2 + 2*f.Z0*f.Z0*(uz/r1-1)
}

func (f *Ionopause) Derive(i int, s dust.State, t float64) (dust.State, error) {
	ux, uy, uz := s[0], s[1], s[2]
	vx, vy, vz := s[3], s[4], s[5]

	r2 := ux*ux + uy*uy
	r := math.Sqrt(r2)
	if r < axisEps {
		return dust.State{}, dust.ErrSingularAxis
	}
	r1 := math.Sqrt(r2 + uz*uz)

	sv := r2 + 2*f.Z0*f.Z0*(uz/r1-1)
	if sv <= 0 {
		// Inside the ionopause; the field is undefined past this point.
		return dust.State{}, dust.ErrBoundary
	}
	sq := math.Sqrt(sv)

	r13 := r1 * r1 * r1
	s2 := -sq/r2 + 1/sq - f.Z0*f.Z0*uz/(r13*sq)
	coef := f.B0 * f.V0 / (f.C * r)

	ex := coef * s2 * ux * uy
	ey := coef * (s2*uy*uy + sq)
	ez := coef * f.Z0 * f.Z0 * r2 / (r13 * sq) * uy

	c1, c2 := f.C1[i], f.C2[i]
	return dust.State{vx, vy, vz, c2 * ex, c2 * ey, c2*ez - c1}, nil
}
