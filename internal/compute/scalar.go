package compute

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/integrate"
)

// minChunk is the smallest per-worker particle range worth spawning a
// goroutine for.
const minChunk = 8

// Scalar is the reference backend: one particle at a time, straight
// translation of the force model equations. Particles are independent,
// so the per-particle loop runs on chunked workers.
type Scalar struct{}

func NewScalar() *Scalar {
	return &Scalar{}
}

func (b *Scalar) Name() string    { return "scalar" }
func (b *Scalar) Available() bool { return true }

func (b *Scalar) Run(ctx context.Context, m dust.Model, initial []dust.State, grid dust.TimeGrid) (*dust.Result, error) {
	grid = grid.Normalize()
	n := len(initial)

	traj := dust.NewTrajectory(grid.Steps, n)
	validLen := make([]int, n)
	boundaryHit := make([]bool, n)
	stepErrs := make([]error, n)
	var canceled atomic.Bool

	for i, s := range initial {
		traj.Set(0, i, s)
	}

	integ := integrate.NewRK4()

	dust.ParallelFor(n, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			s := initial[i]
			for k := 1; k <= grid.Steps; k++ {
				// Cancellation is checked at reporting-step granularity
				// only, never mid-substep.
				if ctx.Err() != nil {
					canceled.Store(true)
					return
				}

				t := float64(k-1) * grid.Dt
				next, err := integ.StepInterval(m, i, s, t, grid.Dt, grid.Substeps)
				if err != nil {
					if errors.Is(err, dust.ErrBoundary) {
						boundaryHit[i] = true
					} else {
						stepErrs[i] = &dust.StepError{Particle: i, Step: k, Time: t, Wrapped: err}
					}
					break
				}
				if !next.IsValid() {
					stepErrs[i] = &dust.StepError{Particle: i, Step: k, Time: t, Wrapped: dust.ErrInvalidState}
					break
				}

				traj.Set(k, i, next)
				validLen[i] = k
				s = next
			}
		}
	})

	for _, err := range stepErrs {
		if err != nil {
			return nil, err
		}
	}

	res := &dust.Result{
		Times:    grid.Times(),
		Traj:     traj,
		ValidLen: validLen,
		Backend:  b.Name(),
	}
	for i, hit := range boundaryHit {
		if hit {
			res.Boundary = append(res.Boundary, i)
		}
	}

	switch {
	case canceled.Load():
		res.Status = dust.StatusCanceled
	case len(res.Boundary) > 0:
		res.Status = dust.StatusTerminated
	default:
		res.Status = dust.StatusCompleted
	}
	return res, nil
}
