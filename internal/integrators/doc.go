// Package integrators drives engine-backed molecular dynamics for a
// molecule.
//
// An integrator is bound to one molecule and one set of Params. Run converts
// a duration to a step count, prepares the molecule's energy model, pushes
// the molecule's state into the engine, steps it and returns the recorded
// trajectory:
//
//	m, _ := mol.ArgonCluster(64, 0.38)
//	models.NewForceField(m, models.Params{})
//	integ, _ := integrators.NewLangevin(m, integrators.Params{
//		Timestep:      2 * units.Femtosecond,
//		FrameInterval: 100 * units.Femtosecond,
//	}, integrators.DefaultThermostat())
//	traj, err := integ.Run(ctx, 10*units.Picosecond, true)
//
// # Execution
//
// Where the step routine runs is decided by the compute.Executor passed with
// WithExecutor. Remote executors receive the molecule as a serialized
// snapshot and the result is copied back into the original molecule, so the
// returned trajectory always refers to the molecule the integrator was built
// with.
//
// # Thread Safety
//
// An integrator is not safe for concurrent use. Serialize calls to Run and
// Submit on one instance.
package integrators
