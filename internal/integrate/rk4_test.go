package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/nkoval/dustsim/internal/dust"
)

// oscillator couples each position to its own velocity with unit spring
// constant, so every axis evolves as cos/sin.
type oscillator struct{}

func (o *oscillator) Name() string   { return "oscillator" }
func (o *oscillator) Particles() int { return 1 }

func (o *oscillator) Derive(i int, s dust.State, t float64) (dust.State, error) {
	return dust.State{s[3], s[4], s[5], -s[0], -s[1], -s[2]}, nil
}

func TestRK4Accuracy(t *testing.T) {
	m := &oscillator{}
	integ := NewRK4()

	s := dust.State{1, 0, 0, 0, 0, 0}
	dt := 0.01
	steps := 100

	var err error
	for k := 0; k < steps; k++ {
		s, err = integ.Step(m, 0, s, float64(k)*dt, dt)
		if err != nil {
			t.Fatal(err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(s[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", s[0], expectedX)
	}
	if math.Abs(s[3]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", s[3], expectedV)
	}
}

func TestStepIntervalSubstepEquivalence(t *testing.T) {
	m := &oscillator{}
	integ := NewRK4()

	s0 := dust.State{1, 0.5, -0.2, 0, 0.3, 0.1}
	dt := 0.5

	coarse, err := integ.StepInterval(m, 0, s0, 0, dt, 1)
	if err != nil {
		t.Fatal(err)
	}
	fine, err := integ.StepInterval(m, 0, s0, 0, dt, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Both land on the same reporting time; they may differ only by the
	// 4th-order truncation error of the coarse step.
	for j := 0; j < 6; j++ {
		if diff := math.Abs(coarse[j] - fine[j]); diff > 1e-3 {
			t.Errorf("component %d: |coarse-fine| = %g exceeds truncation bound", j, diff)
		}
	}
}

// Halving the step size should shrink the global error by roughly 2^4.
func TestRK4OrderScaling(t *testing.T) {
	m := &oscillator{}
	integ := NewRK4()

	run := func(substeps int) dust.State {
		s := dust.State{1, 0, 0, 0, 0, 0}
		var err error
		// 8 reporting intervals of 0.5 time units each.
		for k := 0; k < 8; k++ {
			s, err = integ.StepInterval(m, 0, s, float64(k)*0.5, 0.5, substeps)
			if err != nil {
				t.Fatal(err)
			}
		}
		return s
	}

	exact := math.Cos(4.0)
	errCoarse := math.Abs(run(1)[0] - exact)
	errFine := math.Abs(run(2)[0] - exact)

	ratio := errCoarse / errFine
	if ratio < 8 {
		t.Errorf("error ratio %g for halved step, expected ~16 for a 4th-order scheme", ratio)
	}
}

// failAfter signals a boundary crossing on the nth derivative
// evaluation, standing in for a mid-substep ionopause violation.
type failAfter struct {
	calls int
	n     int
}

func (f *failAfter) Name() string   { return "fail-after" }
func (f *failAfter) Particles() int { return 1 }

func (f *failAfter) Derive(i int, s dust.State, t float64) (dust.State, error) {
	f.calls++
	if f.calls >= f.n {
		return dust.State{}, dust.ErrBoundary
	}
	return dust.State{s[3], s[4], s[5], 0, 0, 0}, nil
}

func TestStepIntervalStopsMidSubstep(t *testing.T) {
	// 6th evaluation is k2 of the second of four substeps.
	m := &failAfter{n: 6}
	integ := NewRK4()

	_, err := integ.StepInterval(m, 0, dust.State{1, 0, 0, 1, 0, 0}, 0, 1.0, 4)
	if !errors.Is(err, dust.ErrBoundary) {
		t.Fatalf("expected ErrBoundary from mid-substep evaluation, got %v", err)
	}
	if m.calls != 6 {
		t.Errorf("stepper kept evaluating after the boundary signal: %d calls", m.calls)
	}
}
