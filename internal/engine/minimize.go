package engine

import (
	"context"
	"math"
)

const (
	initialMinimizerStep = 0.01 // nm
	minMinimizerStep     = 1e-8
)

// Minimize relaxes the context positions by steepest descent until the largest
// force component drops below tolerance (kJ/mol/nm) or maxIterations is
// reached. maxIterations <= 0 runs until convergence. Velocities are left
// untouched. It returns the final potential energy.
func Minimize(ctx context.Context, c *Context, tolerance float64, maxIterations int) (float64, error) {
	step := initialMinimizerStep
	energy := c.PotentialEnergy()
	trial := make([]Vec3, len(c.positions))

	for iter := 0; maxIterations <= 0 || iter < maxIterations; iter++ {
		select {
		case <-ctx.Done():
			return energy, ctx.Err()
		default:
		}

		maxF := 0.0
		for _, f := range c.forces {
			maxF = math.Max(maxF, f.Norm())
		}
		if maxF < tolerance || step < minMinimizerStep {
			break
		}

		saved := CloneVecs(c.positions)
		for i, p := range c.positions {
			trial[i] = p.Add(c.forces[i].Scale(step / maxF))
		}
		copy(c.positions, trial)
		c.invalidate()

		if e := c.PotentialEnergy(); e < energy {
			energy = e
			step *= 1.2
		} else {
			copy(c.positions, saved)
			c.invalidate()
			c.ensureForces()
			step *= 0.2
		}
	}
	return energy, nil
}
