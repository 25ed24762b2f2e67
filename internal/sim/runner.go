// Package sim orchestrates integration runs: it validates the
// configuration, selects a compute backend and hands the result back.
// The run state machine is Ready -> Running -> {Completed | Terminated |
// Canceled}; nothing is retained between runs.
package sim

import (
	"context"
	"fmt"

	"github.com/nkoval/dustsim/internal/compute"
	"github.com/nkoval/dustsim/internal/dust"
)

// Config describes one integration run. Model and Initial are
// constructed by the caller and treated as immutable for the run's
// duration.
type Config struct {
	Model   dust.Model
	Initial []dust.State
	Grid    dust.TimeGrid

	// Backend names the compute backend; empty selects automatically.
	Backend string
}

// Validate rejects a run before any integration starts. Configuration
// errors are never silently defaulted.
func (c Config) Validate() error {
	if c.Model == nil {
		return fmt.Errorf("sim: config needs a force model")
	}
	if len(c.Initial) == 0 {
		return fmt.Errorf("sim: particle count must be at least 1")
	}
	if c.Model.Particles() != len(c.Initial) {
		return fmt.Errorf("sim: model binds %d particles but the ensemble has %d", c.Model.Particles(), len(c.Initial))
	}
	for i, s := range c.Initial {
		if !s.IsValid() {
			return fmt.Errorf("sim: initial state of particle %d is not finite", i)
		}
	}
	return c.Grid.Validate()
}

type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*dust.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var backend compute.Backend
	if cfg.Backend == "" {
		backend = compute.AutoSelect()
	} else {
		b, err := compute.Select(cfg.Backend)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	return backend.Run(ctx, cfg.Model, cfg.Initial, cfg.Grid.Normalize())
}

// Run is a convenience wrapper for one-off runs.
func Run(ctx context.Context, cfg Config) (*dust.Result, error) {
	return NewRunner().Run(ctx, cfg)
}
