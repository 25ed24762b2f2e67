package compute

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/forces"
)

// Vector is the batched backend: the whole ensemble is advanced
// step-major over flat structure-of-arrays buffers, with the RK4 linear
// combinations done as single whole-array operations. Boundary and
// singularity semantics are identical to the scalar reference.
type Vector struct{}

func NewVector() *Vector {
	return &Vector{}
}

func (b *Vector) Name() string    { return "vector" }
func (b *Vector) Available() bool { return true }

func (b *Vector) Run(ctx context.Context, m dust.Model, initial []dust.State, grid dust.TimeGrid) (*dust.Result, error) {
	grid = grid.Normalize()
	n := len(initial)

	eval, err := batchEvaluator(m)
	if err != nil {
		return nil, err
	}

	traj := dust.NewTrajectory(grid.Steps, n)
	validLen := make([]int, n)
	alive := make([]bool, n)
	killed := make([]bool, n) // boundary hit during the current step

	cur := make([]float64, n*6)
	next := make([]float64, n*6)
	ys := make([]float64, n*6)
	k1 := make([]float64, n*6)
	k2 := make([]float64, n*6)
	k3 := make([]float64, n*6)
	k4 := make([]float64, n*6)

	for i, s := range initial {
		traj.Set(0, i, s)
		copy(cur[i*6:], s[:])
		alive[i] = true
	}

	h := grid.Dt / float64(grid.Substeps)
	canceled := false
	res := &dust.Result{Times: grid.Times(), Traj: traj, ValidLen: validLen, Backend: b.Name()}

	for k := 1; k <= grid.Steps; k++ {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		copy(next, cur)
		for sub := 0; sub < grid.Substeps; sub++ {
			t := float64(k-1)*grid.Dt + float64(sub)*h

			if p, err := eval(next, t, alive, killed, k1); err != nil {
				return nil, &dust.StepError{Particle: p, Step: k, Time: t, Wrapped: err}
			}
			floats.AddScaledTo(ys, next, 0.5*h, k1)

			if p, err := eval(ys, t+0.5*h, alive, killed, k2); err != nil {
				return nil, &dust.StepError{Particle: p, Step: k, Time: t, Wrapped: err}
			}
			floats.AddScaledTo(ys, next, 0.5*h, k2)

			if p, err := eval(ys, t+0.5*h, alive, killed, k3); err != nil {
				return nil, &dust.StepError{Particle: p, Step: k, Time: t, Wrapped: err}
			}
			floats.AddScaledTo(ys, next, h, k3)

			if p, err := eval(ys, t+h, alive, killed, k4); err != nil {
				return nil, &dust.StepError{Particle: p, Step: k, Time: t, Wrapped: err}
			}

			floats.AddScaled(next, h/6, k1)
			floats.AddScaled(next, h/3, k2)
			floats.AddScaled(next, h/3, k3)
			floats.AddScaled(next, h/6, k4)
		}

		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			if killed[i] {
				// Truncated at the previous row; nothing written for k.
				alive[i] = false
				res.Boundary = append(res.Boundary, i)
				continue
			}
			var s dust.State
			copy(s[:], next[i*6:])
			if !s.IsValid() {
				return nil, &dust.StepError{Particle: i, Step: k, Time: float64(k) * grid.Dt, Wrapped: dust.ErrInvalidState}
			}
			traj.Set(k, i, s)
			validLen[i] = k
		}
		copy(cur, next)
	}

	sort.Ints(res.Boundary)
	switch {
	case canceled:
		res.Status = dust.StatusCanceled
	case len(res.Boundary) > 0:
		res.Status = dust.StatusTerminated
	default:
		res.Status = dust.StatusCompleted
	}
	return res, nil
}

// batchEval fills out with the state derivative of every live particle,
// zeroing the slots of dead or just-killed ones. It reports an axis
// singularity through the returned particle index and error.
type batchEval func(state []float64, t float64, alive, killed []bool, out []float64) (int, error)

func batchEvaluator(m dust.Model) (batchEval, error) {
	switch f := m.(type) {
	case *forces.UniformField:
		return func(state []float64, t float64, alive, killed []bool, out []float64) (int, error) {
			deriveUniformBatch(f, state, alive, killed, out)
			return -1, nil
		}, nil
	case *forces.Ionopause:
		return func(state []float64, t float64, alive, killed []bool, out []float64) (int, error) {
			return deriveIonopauseBatch(f, state, alive, killed, out)
		}, nil
	default:
		return nil, fmt.Errorf("compute: model %q has no vectorized evaluation", m.Name())
	}
}

func deriveUniformBatch(f *forces.UniformField, state []float64, alive, killed []bool, out []float64) {
	n := len(alive)
	dust.ParallelFor(n, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			o := i * 6
			if !alive[i] || killed[i] {
				zero6(out[o:])
				continue
			}

			x, y, z := state[o], state[o+1], state[o+2]
			vx, vy, vz := state[o+3], state[o+4], state[o+5]

			var ax, ay, az float64
			r := math.Sqrt(x*x + y*y + z*z)
			if r > 1e-12 {
				g := -f.GM * (1 - f.Beta[i]) / (r * r * r)
				ax = g * x
				ay = g * y
				az = g * z
			}

			qom := f.QoM[i]
			ax += qom * (f.E[0] + vy*f.B[2] - vz*f.B[1])
			ay += qom * (f.E[1] + vz*f.B[0] - vx*f.B[2])
			az += qom * (f.E[2] + vx*f.B[1] - vy*f.B[0])

			out[o], out[o+1], out[o+2] = vx, vy, vz
			out[o+3], out[o+4], out[o+5] = ax, ay, az
		}
	})
}

func deriveIonopauseBatch(f *forces.Ionopause, state []float64, alive, killed []bool, out []float64) (int, error) {
	n := len(alive)
	var singular atomic.Int64
	singular.Store(-1)

	dust.ParallelFor(n, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			o := i * 6
			if !alive[i] || killed[i] {
				zero6(out[o:])
				continue
			}

			ux, uy, uz := state[o], state[o+1], state[o+2]
			vx, vy, vz := state[o+3], state[o+4], state[o+5]

			r2 := ux*ux + uy*uy
			r := math.Sqrt(r2)
			if r < 1e-12 {
				singular.CompareAndSwap(-1, int64(i))
				zero6(out[o:])
				continue
			}
			r1 := math.Sqrt(r2 + uz*uz)

			sv := r2 + 2*f.Z0*f.Z0*(uz/r1-1)
			if sv <= 0 {
				killed[i] = true
				zero6(out[o:])
				continue
			}
			sq := math.Sqrt(sv)

			r13 := r1 * r1 * r1
			s2 := -sq/r2 + 1/sq - f.Z0*f.Z0*uz/(r13*sq)
			coef := f.B0 * f.V0 / (f.C * r)

			ex := coef * s2 * ux * uy
			ey := coef * (s2*uy*uy + sq)
			ez := coef * f.Z0 * f.Z0 * r2 / (r13 * sq) * uy

			c1, c2 := f.C1[i], f.C2[i]
			out[o], out[o+1], out[o+2] = vx, vy, vz
			out[o+3], out[o+4], out[o+5] = c2*ex, c2*ey, c2*ez-c1
		}
	})

	if p := singular.Load(); p >= 0 {
		return int(p), dust.ErrSingularAxis
	}
	return -1, nil
}

func zero6(s []float64) {
	for j := 0; j < 6; j++ {
		s[j] = 0
	}
}
