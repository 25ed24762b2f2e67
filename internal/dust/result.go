package dust

// RunStatus is the terminal state of an integration run.
type RunStatus int

const (
	// StatusCompleted means every particle finished all reporting steps.
	StatusCompleted RunStatus = iota
	// StatusTerminated means at least one particle crossed the ionopause
	// boundary and was truncated.
	StatusTerminated
	// StatusCanceled means the caller requested an early stop; the
	// buffer holds whatever was integrated so far.
	StatusCanceled
)

func (s RunStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusTerminated:
		return "terminated-by-boundary"
	case StatusCanceled:
		return "canceled"
	}
	return "unknown"
}

// Trajectory is the dense output buffer of one run: (Steps+1) reported
// rows of N particles with 6 components each. Row 0 holds the initial
// ensemble. The buffer is owned by the run that produced it and is
// read-only to consumers.
type Trajectory struct {
	steps int // reported steps, rows = steps+1
	n     int
	data  []float64
}

func NewTrajectory(steps, particles int) *Trajectory {
	return &Trajectory{
		steps: steps,
		n:     particles,
		data:  make([]float64, (steps+1)*particles*6),
	}
}

func (t *Trajectory) Steps() int     { return t.steps }
func (t *Trajectory) Particles() int { return t.n }

func (t *Trajectory) At(step, particle int) State {
	var s State
	copy(s[:], t.data[(step*t.n+particle)*6:])
	return s
}

func (t *Trajectory) Set(step, particle int, s State) {
	copy(t.data[(step*t.n+particle)*6:(step*t.n+particle)*6+6], s[:])
}

// Radii returns the distance from the origin of one particle at every
// row up to and including lastValid.
func (t *Trajectory) Radii(particle, lastValid int) []float64 {
	rs := make([]float64, 0, lastValid+1)
	for k := 0; k <= lastValid; k++ {
		rs = append(rs, t.At(k, particle).Radius())
	}
	return rs
}

// Result is what an integration run hands back to the caller.
//
// ValidLen[i] is the index of the last valid row for particle i; rows
// past it were never written (truncation, not freezing) and must not be
// read. Boundary lists the particles that crossed the ionopause, in
// ascending order.
type Result struct {
	Times    []float64
	Traj     *Trajectory
	Status   RunStatus
	ValidLen []int
	Boundary []int
	Backend  string
}
