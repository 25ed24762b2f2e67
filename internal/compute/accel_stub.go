//go:build !accel

package compute

import (
	"context"

	"github.com/nkoval/dustsim/internal/dust"
)

// Accel is not compiled in without the accel build tag; the stub keeps
// the backend selectable-by-name semantics intact and delegates to the
// vector backend.
type Accel struct{}

func NewAccel() *Accel {
	return &Accel{}
}

func (a *Accel) Name() string    { return "accel" }
func (a *Accel) Available() bool { return false }

func (a *Accel) Run(ctx context.Context, m dust.Model, initial []dust.State, grid dust.TimeGrid) (*dust.Result, error) {
	return NewVector().Run(ctx, m, initial, grid)
}
