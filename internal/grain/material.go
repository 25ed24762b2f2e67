// Package grain maps dust compositions and grain sizes to the scattering
// coefficients and derived force constants used by the ionopause model.
package grain

import (
	"errors"
	"fmt"
	"math"
)

// Material names a dust composition with a known scattering fit.
type Material string

const (
	Olivine   Material = "olivine"
	Magnetite Material = "magnetite"
)

// ErrUnknownMaterial is fatal for a run: material coefficients are never
// defaulted.
var ErrUnknownMaterial = errors.New("grain: unknown material")

// knotDiameter is the grain diameter at which the piecewise-linear Qpr
// fits switch branches. The fits are not continuous across the knot.
const knotDiameter = 0.1e-6 // m

// Coefficients returns the radiation-pressure efficiency Qpr and the
// scattering ratio Chi for a material and grain diameter in meters.
func Coefficients(m Material, diameter float64) (qpr, chi float64, err error) {
	if diameter <= 0 {
		return 0, 0, fmt.Errorf("grain: diameter must be positive, got %g", diameter)
	}

	um := diameter * 1e6 // fits are keyed on diameter in micrometers

	switch m {
	case Magnetite:
		if diameter <= knotDiameter {
			qpr = 17.89 * um
		} else {
			qpr = -0.8*um + 2
		}
		chi = 0.0292 * math.Pow(um, -1.238)
	case Olivine:
		if diameter <= knotDiameter {
			qpr = 3.0275 * um
		} else {
			qpr = -0.4*um + 1.4
		}
		chi = 0.0357 * math.Pow(um, -1.65)
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownMaterial, m)
	}

	return qpr, chi, nil
}

// Grain describes one dust grain by composition, bulk density and
// diameter.
type Grain struct {
	Material Material
	Density  float64 // bulk density, mass per volume
	Diameter float64 // m
}

// Constants derives the grain mass and the ionopause force constants C1
// and C2. c is the speed of light, d the solar distance and sd the solar
// constant, all in the unit system the ionopause model runs in.
func (g Grain) Constants(c, d, sd float64) (mass, c1, c2 float64, err error) {
	if g.Density <= 0 {
		return 0, 0, 0, fmt.Errorf("grain: density must be positive, got %g", g.Density)
	}

	qpr, chi, err := Coefficients(g.Material, g.Diameter)
	if err != nil {
		return 0, 0, 0, err
	}

	mass = g.Density * math.Pi * g.Diameter * g.Diameter * g.Diameter / 6
	c1 = math.Pi * g.Diameter * g.Diameter / (c * d * d) * qpr * sd / mass
	c2 = c1 * chi
	return mass, c1, c2, nil
}
