// Package integrate provides the fixed-step RK4 stepper used by the
// compute backends. Adaptive step-size control is out of scope.
package integrate

import "github.com/nkoval/dustsim/internal/dust"

// RK4 advances one grain's 6-vector state with the classic explicit
// fourth-order Runge-Kutta scheme. The zero value is ready to use.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

// Step performs a single RK4 step of size h. The force model is
// consulted at all four derivative evaluations; a model error (boundary
// crossing, axis singularity) aborts the step immediately.
func (r *RK4) Step(m dust.Model, i int, s dust.State, t, h float64) (dust.State, error) {
	k1, err := m.Derive(i, s, t)
	if err != nil {
		return dust.State{}, err
	}

	var ys dust.State
	for j := 0; j < 6; j++ {
		ys[j] = s[j] + 0.5*h*k1[j]
	}
	k2, err := m.Derive(i, ys, t+0.5*h)
	if err != nil {
		return dust.State{}, err
	}

	for j := 0; j < 6; j++ {
		ys[j] = s[j] + 0.5*h*k2[j]
	}
	k3, err := m.Derive(i, ys, t+0.5*h)
	if err != nil {
		return dust.State{}, err
	}

	for j := 0; j < 6; j++ {
		ys[j] = s[j] + h*k3[j]
	}
	k4, err := m.Derive(i, ys, t+h)
	if err != nil {
		return dust.State{}, err
	}

	h6 := h / 6.0
	var out dust.State
	for j := 0; j < 6; j++ {
		out[j] = s[j] + h6*(k1[j]+2*k2[j]+2*k3[j]+k4[j])
	}
	return out, nil
}

// StepInterval advances over one reporting interval dt, subdividing it
// into substeps equal internal iterations. Sub-stepping amortizes
// truncation error without growing the output buffer.
func (r *RK4) StepInterval(m dust.Model, i int, s dust.State, t, dt float64, substeps int) (dust.State, error) {
	if substeps < 1 {
		substeps = 1
	}
	h := dt / float64(substeps)
	for k := 0; k < substeps; k++ {
		next, err := r.Step(m, i, s, t+float64(k)*h, h)
		if err != nil {
			return dust.State{}, err
		}
		s = next
	}
	return s, nil
}
