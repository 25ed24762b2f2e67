package compute_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nkoval/dustsim/internal/compute"
	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/forces"
)

// maxRelDiff returns the largest relative component difference between
// two trajectories over the rows both backends report as valid.
func maxRelDiff(a, b *dust.Result) float64 {
	worst := 0.0
	for i := 0; i < a.Traj.Particles(); i++ {
		last := a.ValidLen[i]
		if b.ValidLen[i] < last {
			last = b.ValidLen[i]
		}
		for k := 0; k <= last; k++ {
			sa, sb := a.Traj.At(k, i), b.Traj.At(k, i)
			for j := 0; j < 6; j++ {
				scale := math.Max(1, math.Max(math.Abs(sa[j]), math.Abs(sb[j])))
				if d := math.Abs(sa[j]-sb[j]) / scale; d > worst {
					worst = d
				}
			}
		}
	}
	return worst
}

var _ = Describe("Backend consistency", func() {
	ctx := context.Background()

	Describe("uniform-field model", func() {
		var (
			model   dust.Model
			initial []dust.State
			grid    dust.TimeGrid
		)

		BeforeEach(func() {
			var err error
			model, err = forces.NewUniformField(
				1.0,
				[3]float64{0, 0, 1e-3},
				[3]float64{0, 0, 2e-3},
				[]float64{0.01, 0.02},
				[]float64{0, 0.1},
			)
			Expect(err).NotTo(HaveOccurred())

			initial = []dust.State{
				{1, 0, 0, 0, 1, 0},
				{0, 1.2, 0, -0.9, 0, 0.05},
			}
			grid = dust.TimeGrid{Dt: 0.01, Steps: 200, Substeps: 2}
		})

		It("produces matching trajectories on the scalar and vector backends", func() {
			ref, err := compute.NewScalar().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())
			vec, err := compute.NewVector().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(ref.Status).To(Equal(dust.StatusCompleted))
			Expect(vec.Status).To(Equal(dust.StatusCompleted))
			Expect(vec.ValidLen).To(Equal(ref.ValidLen))
			Expect(maxRelDiff(ref, vec)).To(BeNumerically("<", 1e-6))
		})

		It("matches through the accel stub", func() {
			ref, err := compute.NewScalar().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())
			acc, err := compute.NewAccel().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())

			Expect(maxRelDiff(ref, acc)).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("ionopause model", func() {
		// A force-free grain descending in a straight line from
		// (1,0,2) at vz=-1 with z0=1 crosses S=0 at z=1/sqrt(3); with
		// dt=0.1 the first violating derivative evaluation happens while
		// computing row 15, so both backends must truncate at row 14.
		var (
			model   dust.Model
			initial []dust.State
			grid    dust.TimeGrid
		)

		BeforeEach(func() {
			var err error
			model, err = forces.NewIonopause(1, 1, 1, 1, []float64{0}, []float64{0})
			Expect(err).NotTo(HaveOccurred())

			initial = []dust.State{{1, 0, 2, 0, 0, -1}}
			grid = dust.TimeGrid{Dt: 0.1, Steps: 30, Substeps: 1}
		})

		It("terminates both backends at the same step index", func() {
			ref, err := compute.NewScalar().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())
			vec, err := compute.NewVector().Run(ctx, model, initial, grid)
			Expect(err).NotTo(HaveOccurred())

			for _, res := range []*dust.Result{ref, vec} {
				Expect(res.Status).To(Equal(dust.StatusTerminated))
				Expect(res.Boundary).To(Equal([]int{0}))
				Expect(res.ValidLen).To(Equal([]int{14}))
				Expect(res.Traj.At(15, 0)).To(Equal(dust.State{}), "no rows may be written past the truncation index")
			}

			Expect(maxRelDiff(ref, vec)).To(BeNumerically("<", 1e-6))
		})

		It("reports an axis singularity with particle and step context", func() {
			axis := []dust.State{{0, 0, 5, 0, 0, -1}}

			_, err := compute.NewScalar().Run(ctx, model, axis, grid)
			Expect(err).To(MatchError(dust.ErrSingularAxis))
			var stepErr *dust.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Particle).To(Equal(0))
			Expect(stepErr.Step).To(Equal(1))

			_, err = compute.NewVector().Run(ctx, model, axis, grid)
			Expect(err).To(MatchError(dust.ErrSingularAxis))
		})
	})

	Describe("cancellation", func() {
		It("returns a canceled status distinct from boundary termination", func() {
			model, err := forces.NewUniformField(0, [3]float64{}, [3]float64{}, []float64{0}, []float64{0})
			Expect(err).NotTo(HaveOccurred())

			canceled, cancel := context.WithCancel(context.Background())
			cancel()

			for _, b := range []compute.Backend{compute.NewScalar(), compute.NewVector()} {
				res, err := b.Run(canceled, model, []dust.State{{1, 0, 0, 0, 0, 0}}, dust.TimeGrid{Dt: 1, Steps: 10})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Status).To(Equal(dust.StatusCanceled))
				Expect(res.ValidLen).To(Equal([]int{0}))
			}
		})
	})

	Describe("vector backend", func() {
		It("rejects models without a batched evaluation", func() {
			_, err := compute.NewVector().Run(ctx, stubModel{}, []dust.State{{}}, dust.TimeGrid{Dt: 1, Steps: 1})
			Expect(err).To(MatchError(ContainSubstring("no vectorized evaluation")))
		})
	})
})

type stubModel struct{}

func (stubModel) Name() string   { return "stub" }
func (stubModel) Particles() int { return 1 }
func (stubModel) Derive(i int, s dust.State, t float64) (dust.State, error) {
	return dust.State{}, nil
}
