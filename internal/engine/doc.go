// Package engine is a small classical molecular dynamics engine.
//
// The package mirrors the layout of established MD toolkits:
//
//   - [System]: particle masses and the [Force] terms acting on them
//   - [Platform]: where pairwise work is evaluated (serial or parallel)
//   - [Integrator]: advances a [Context] by one timestep
//   - [Context]: positions, velocities, clock and cached forces
//   - [Simulation]: drives an integrator and invokes [Reporter]s
//
// Units are nm, ps, daltons, kJ/mol and kelvin throughout.
//
// # Example
//
//	sys := engine.NewSystem()
//	a, b := sys.AddParticle(39.948), sys.AddParticle(39.948)
//	bonds := engine.NewHarmonicBondForce()
//	bonds.AddBond(a, b, 0.38, 1000)
//	sys.AddForce(bonds)
//	sim, _ := engine.NewSimulation(sys, engine.NewVerletIntegrator(0.002), engine.Reference())
//	_ = sim.Context().SetPositions(positions)
//	err := sim.Step(ctx, 1000)
//
// # Thread Safety
//
// Simulation and Context instances are NOT thread-safe. The CPU platform
// parallelizes force evaluation internally, but a single simulation must be
// driven from one goroutine.
package engine
