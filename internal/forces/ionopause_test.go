package forces

import (
	"errors"
	"math"
	"testing"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/grain"
)

func newTestIonopause(t *testing.T, c1, c2 float64) *Ionopause {
	t.Helper()
	f, err := NewIonopause(2.0, 3.0, 4.0, 1.0, []float64{c1}, []float64{c2})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestIonopauseSurfaceSign(t *testing.T) {
	f := newTestIonopause(t, 0, 0)

	// Far from the standoff surface, S ~ r^2 > 0.
	if s := f.Surface(dust.State{3, 0, 5, 0, 0, 0}); s <= 0 {
		t.Errorf("S = %g outside the ionopause, expected positive", s)
	}

	// Deep behind the standoff point at small cylindrical radius.
	if s := f.Surface(dust.State{0.5, 0, 0.1, 0, 0, 0}); s > 0 {
		t.Errorf("S = %g inside the ionopause, expected non-positive", s)
	}
}

func TestIonopauseBoundarySignal(t *testing.T) {
	f := newTestIonopause(t, 0.5, 0.25)

	_, err := f.Derive(0, dust.State{0.5, 0, 0.1, 0, 0, -1}, 0)
	if !errors.Is(err, dust.ErrBoundary) {
		t.Fatalf("expected ErrBoundary inside the ionopause, got %v", err)
	}
}

func TestIonopauseAxisSingularity(t *testing.T) {
	f := newTestIonopause(t, 0.5, 0.25)

	_, err := f.Derive(0, dust.State{0, 0, 5, 0, 0, -1}, 0)
	if !errors.Is(err, dust.ErrSingularAxis) {
		t.Fatalf("expected ErrSingularAxis on the symmetry axis, got %v", err)
	}
}

// With uy = 0 the cross terms vanish: Ex = Ez = 0 and Ey = Coef*S, so
// the acceleration reduces to (0, C2*Coef*S, -C1).
func TestIonopauseDeriveInPlane(t *testing.T) {
	c1, c2 := 0.5, 0.25
	f := newTestIonopause(t, c1, c2)

	s := dust.State{2, 0, 3, 0.1, 0.2, 0.3}
	d, err := f.Derive(0, s, 0)
	if err != nil {
		t.Fatal(err)
	}

	if d[0] != 0.1 || d[1] != 0.2 || d[2] != 0.3 {
		t.Errorf("position derivative = (%g,%g,%g), expected the velocity", d[0], d[1], d[2])
	}

	r := 2.0
	sq := math.Sqrt(f.Surface(s))
	coef := f.B0 * f.V0 / (f.C * r)
	wantAy := c2 * coef * sq

	if math.Abs(d[3]) > 1e-15 {
		t.Errorf("ax = %g, expected 0 for uy=0", d[3])
	}
	if math.Abs(d[4]-wantAy)/wantAy > 1e-12 {
		t.Errorf("ay = %g, expected %g", d[4], wantAy)
	}
	if math.Abs(d[5]+c1) > 1e-15 {
		t.Errorf("az = %g, expected -C1 = %g", d[5], -c1)
	}
}

func TestIonopauseDeriveGeneral(t *testing.T) {
	c1, c2 := 0.5, 0.25
	f := newTestIonopause(t, c1, c2)

	ux, uy, uz := 1.5, -0.8, 2.0
	s := dust.State{ux, uy, uz, 0, 0, 0}
	d, err := f.Derive(0, s, 0)
	if err != nil {
		t.Fatal(err)
	}

	r2 := ux*ux + uy*uy
	r := math.Sqrt(r2)
	r1 := math.Sqrt(r2 + uz*uz)
	r13 := r1 * r1 * r1
	sq := math.Sqrt(r2 + 2*(uz/r1-1))
	s2 := -sq/r2 + 1/sq - uz/(r13*sq)
	coef := f.B0 * f.V0 / (f.C * r)

	wantAx := c2 * coef * s2 * ux * uy
	wantAy := c2 * coef * (s2*uy*uy + sq)
	wantAz := c2*coef*r2/(r13*sq)*uy - c1

	if math.Abs(d[3]-wantAx) > 1e-12*math.Abs(wantAx) {
		t.Errorf("ax = %g, expected %g", d[3], wantAx)
	}
	if math.Abs(d[4]-wantAy) > 1e-12*math.Abs(wantAy) {
		t.Errorf("ay = %g, expected %g", d[4], wantAy)
	}
	if math.Abs(d[5]-wantAz) > 1e-12*math.Abs(wantAz) {
		t.Errorf("az = %g, expected %g", d[5], wantAz)
	}
}

func TestNewIonopauseFromGrains(t *testing.T) {
	grains := []grain.Grain{
		{Material: grain.Olivine, Density: 3300, Diameter: 0.2e-6},
		{Material: grain.Magnetite, Density: 5200, Diameter: 0.05e-6},
	}

	f, err := NewIonopauseFromGrains(2.998e8, 5e-9, 4e5, 1e10, 1.0, 1361.0, grains)
	if err != nil {
		t.Fatal(err)
	}
	if f.Particles() != 2 {
		t.Fatalf("expected 2 particle bindings, got %d", f.Particles())
	}

	for i := range grains {
		_, c1, c2, _ := grains[i].Constants(2.998e8, 1.0, 1361.0)
		if f.C1[i] != c1 || f.C2[i] != c2 {
			t.Errorf("grain %d: constants (%g,%g), expected (%g,%g)", i, f.C1[i], f.C2[i], c1, c2)
		}
	}

	grains[1].Material = "ice"
	if _, err := NewIonopauseFromGrains(2.998e8, 5e-9, 4e5, 1e10, 1.0, 1361.0, grains); !errors.Is(err, grain.ErrUnknownMaterial) {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
}
