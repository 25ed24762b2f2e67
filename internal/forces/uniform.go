package forces

import (
	"fmt"
	"math"

	"github.com/nkoval/dustsim/internal/dust"
)

// gravityEps is the radius below which the gravitational term is zeroed
// to avoid the 1/r^3 singularity at the origin.
const gravityEps = 1e-12

// UniformField is the heliospheric force model: solar gravity reduced by
// the radiation-pressure coefficient beta, plus a Lorentz force from
// constant interplanetary E and B fields. SI units. The model has no
// boundary condition and never terminates a trajectory.
type UniformField struct {
	GM float64    // gravitational parameter, m^3 s^-2
	E  [3]float64 // V/m
	B  [3]float64 // T

	// Per-particle coefficients, one entry per grain.
	QoM  []float64 // charge-to-mass ratio
	Beta []float64 // radiation-pressure coefficient
}

func NewUniformField(gm float64, e, b [3]float64, qom, beta []float64) (*UniformField, error) {
	if len(qom) == 0 {
		return nil, fmt.Errorf("forces: uniform field needs at least one particle")
	}
	if len(qom) != len(beta) {
		return nil, fmt.Errorf("forces: qom length %d does not match beta length %d", len(qom), len(beta))
	}
	return &UniformField{GM: gm, E: e, B: b, QoM: qom, Beta: beta}, nil
}

func (f *UniformField) Name() string   { return "uniform-field" }
func (f *UniformField) Particles() int { return len(f.QoM) }

func (f *UniformField) Derive(i int, s dust.State, t float64) (dust.State, error) {
	x, y, z := s[0], s[1], s[2]
	vx, vy, vz := s[3], s[4], s[5]

	var ax, ay, az float64
	r := math.Sqrt(x*x + y*y + z*z)
	if r > gravityEps {
		g := -f.GM * (1 - f.Beta[i]) / (r * r * r)
		ax = g * x
		ay = g * y
		az = g * z
	}

	qom := f.QoM[i]
	ax += qom * (f.E[0] + vy*f.B[2] - vz*f.B[1])
	ay += qom * (f.E[1] + vz*f.B[0] - vx*f.B[2])
	az += qom * (f.E[2] + vx*f.B[1] - vy*f.B[0])

	return dust.State{vx, vy, vz, ax, ay, az}, nil
}
