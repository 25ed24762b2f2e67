//go:build accel

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -ldustkernels -lstdc++
#include <stdlib.h>

extern int accel_device_count();
extern const char* accel_device_name_get();
extern int rk4_uniform_gpu(double* traj, int* valid_len, const double* initial,
	int n, int steps, int substeps, double dt,
	double gm, const double* e, const double* b,
	const double* qom, const double* beta);
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/forces"
)

// Accel offloads whole uniform-field runs to the GPU kernel library.
// The ionopause model, with its per-evaluation boundary bookkeeping, is
// delegated to the vector backend on this device generation.
type Accel struct {
	available  bool
	deviceName string
}

func NewAccel() *Accel {
	count := int(C.accel_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.accel_device_name_get())
	}
	return &Accel{available: count > 0, deviceName: name}
}

func (a *Accel) Name() string    { return "accel" }
func (a *Accel) Available() bool { return a.available }

func (a *Accel) Run(ctx context.Context, m dust.Model, initial []dust.State, grid dust.TimeGrid) (*dust.Result, error) {
	f, ok := m.(*forces.UniformField)
	if !ok || !a.available {
		return NewVector().Run(ctx, m, initial, grid)
	}

	grid = grid.Normalize()
	n := len(initial)

	traj := dust.NewTrajectory(grid.Steps, n)
	flat := make([]float64, (grid.Steps+1)*n*6)
	init := make([]float64, n*6)
	validLen := make([]C.int, n)
	for i, s := range initial {
		copy(init[i*6:], s[:])
	}

	rc := C.rk4_uniform_gpu(
		(*C.double)(unsafe.Pointer(&flat[0])),
		(*C.int)(unsafe.Pointer(&validLen[0])),
		(*C.double)(unsafe.Pointer(&init[0])),
		C.int(n), C.int(grid.Steps), C.int(grid.Substeps), C.double(grid.Dt),
		C.double(f.GM),
		(*C.double)(unsafe.Pointer(&f.E[0])),
		(*C.double)(unsafe.Pointer(&f.B[0])),
		(*C.double)(unsafe.Pointer(&f.QoM[0])),
		(*C.double)(unsafe.Pointer(&f.Beta[0])),
	)
	if rc != 0 {
		// Kernel launch failure; fall back rather than lose the run.
		return NewVector().Run(ctx, m, initial, grid)
	}

	vl := make([]int, n)
	for k := 0; k <= grid.Steps; k++ {
		for i := 0; i < n; i++ {
			var s dust.State
			copy(s[:], flat[(k*n+i)*6:])
			traj.Set(k, i, s)
		}
	}
	for i := range validLen {
		vl[i] = int(validLen[i])
	}

	return &dust.Result{
		Times:    grid.Times(),
		Traj:     traj,
		Status:   dust.StatusCompleted,
		ValidLen: vl,
		Backend:  a.Name(),
	}, nil
}
