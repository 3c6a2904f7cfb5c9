// Package analysis derives spectra from trajectories.
//
// [VibrationalSpectrum] computes the mass-weighted velocity autocorrelation
// of a trajectory and transforms it into a power spectrum:
//
//	spec, err := analysis.VibrationalSpectrum(traj)
//	if err != nil {
//	    return err
//	}
//	peak := spec.Peak() // cm^-1
//
// Only the leading run of evenly spaced frames is used, so the trailing
// final frames a run appends are ignored.
package analysis
