package forces

import (
	"math"
	"testing"

	"github.com/nkoval/dustsim/internal/dust"
)

func TestUniformFieldGravity(t *testing.T) {
	f, err := NewUniformField(1.0, [3]float64{}, [3]float64{}, []float64{0}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}

	d, err := f.Derive(0, dust.State{2, 0, 0, 0, 0.5, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}

	// dx/dt is the velocity.
	if d[0] != 0 || d[1] != 0.5 || d[2] != 0 {
		t.Errorf("position derivative = (%g,%g,%g), expected velocity (0,0.5,0)", d[0], d[1], d[2])
	}

	// a = -GM*x/r^3 = -1*2/8 = -0.25 toward the origin.
	if math.Abs(d[3]+0.25) > 1e-15 || d[4] != 0 || d[5] != 0 {
		t.Errorf("acceleration = (%g,%g,%g), expected (-0.25,0,0)", d[3], d[4], d[5])
	}
}

func TestUniformFieldBetaReducesGravity(t *testing.T) {
	f, _ := NewUniformField(1.0, [3]float64{}, [3]float64{}, []float64{0, 0}, []float64{0, 0.5})

	s := dust.State{1, 0, 0, 0, 0, 0}
	d0, _ := f.Derive(0, s, 0)
	d1, _ := f.Derive(1, s, 0)

	if math.Abs(d1[3]-0.5*d0[3]) > 1e-15 {
		t.Errorf("beta=0.5 acceleration %g, expected half of %g", d1[3], d0[3])
	}
}

func TestUniformFieldLorentz(t *testing.T) {
	e := [3]float64{1, 2, 3}
	b := [3]float64{0, 0, 2}
	f, _ := NewUniformField(0, e, b, []float64{3}, []float64{0})

	d, err := f.Derive(0, dust.State{0, 0, 0, 1, -1, 0.5}, 0)
	if err != nil {
		t.Fatal(err)
	}

	// a = qom*(E + v x B); v x B = (-1*2 - 0, 0 - 1*2, 0) = (-2, -2, 0).
	want := [3]float64{3 * (1 - 2), 3 * (2 - 2), 3 * 3}
	for i, w := range want {
		if math.Abs(d[3+i]-w) > 1e-15 {
			t.Errorf("acceleration[%d] = %g, expected %g", i, d[3+i], w)
		}
	}
}

func TestUniformFieldOriginGuard(t *testing.T) {
	f, _ := NewUniformField(1.0, [3]float64{}, [3]float64{}, []float64{0}, []float64{0})

	d, err := f.Derive(0, dust.State{0, 0, 0, 1, 0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d[3] != 0 || d[4] != 0 || d[5] != 0 {
		t.Errorf("acceleration at origin = (%g,%g,%g), expected zero gravity term", d[3], d[4], d[5])
	}
	if !d.IsValid() {
		t.Error("derivative at origin must stay finite")
	}
}

func TestNewUniformFieldValidation(t *testing.T) {
	if _, err := NewUniformField(1, [3]float64{}, [3]float64{}, nil, nil); err == nil {
		t.Error("expected error for empty ensemble")
	}
	if _, err := NewUniformField(1, [3]float64{}, [3]float64{}, []float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched coefficient lengths")
	}
}
