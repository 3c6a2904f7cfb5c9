package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

// WavenumberPerTHz converts THz to cm^-1.
const WavenumberPerTHz = 33.35641

// minFrames is the shortest evenly spaced run that yields a spectrum.
const minFrames = 4

var ErrTooFewFrames = errors.New("analysis: too few evenly spaced frames with velocities")

// Spectrum is a power spectrum over wavenumbers in cm^-1.
type Spectrum struct {
	Wavenumbers []float64
	Intensity   []float64
}

// Peak returns the wavenumber of the strongest non-zero frequency bin.
func (s Spectrum) Peak() float64 {
	best, at := -1.0, 0.0
	for i := 1; i < len(s.Intensity); i++ {
		if s.Intensity[i] > best {
			best, at = s.Intensity[i], s.Wavenumbers[i]
		}
	}
	return at
}

// uniformFrames returns the leading frames that share the first spacing.
func uniformFrames(traj *trajectory.Trajectory) ([]trajectory.Frame, float64) {
	frames := traj.Frames
	if len(frames) < 2 {
		return frames, 0
	}
	dt := float64(frames[1].Time - frames[0].Time)
	if dt <= 0 {
		return frames[:1], 0
	}
	n := 2
	for n < len(frames) {
		step := float64(frames[n].Time - frames[n-1].Time)
		if math.Abs(step-dt) > 1e-6*dt {
			break
		}
		n++
	}
	return frames[:n], dt
}

// VelocityAutocorrelation returns the mass-weighted velocity
// autocorrelation of the evenly spaced frames, normalized so C(0) = 1,
// for lags up to half the number of frames. dt is the lag spacing in ps.
func VelocityAutocorrelation(traj *trajectory.Trajectory) (c []float64, dt float64, err error) {
	frames, dt := uniformFrames(traj)
	if len(frames) < minFrames {
		return nil, 0, fmt.Errorf("%w: %d", ErrTooFewFrames, len(frames))
	}
	masses := traj.Mol.Masses()
	for i, f := range frames {
		if len(f.Velocities) != len(masses) {
			return nil, 0, fmt.Errorf("%w: frame %d has %d velocities for %d atoms", ErrTooFewFrames, i, len(f.Velocities), len(masses))
		}
	}

	lags := len(frames) / 2
	c = make([]float64, lags)
	for lag := range c {
		var sum float64
		origins := len(frames) - lag
		for t0 := 0; t0 < origins; t0++ {
			a, b := frames[t0].Velocities, frames[t0+lag].Velocities
			for i, m := range masses {
				sum += m * a[i].Dot(b[i])
			}
		}
		c[lag] = sum / float64(origins)
	}
	if c[0] == 0 {
		return nil, 0, fmt.Errorf("%w: zero velocities", ErrTooFewFrames)
	}
	c0 := c[0]
	for i := range c {
		c[i] /= c0
	}
	return c, dt, nil
}

// VibrationalSpectrum is the power spectrum of the velocity
// autocorrelation.
func VibrationalSpectrum(traj *trajectory.Trajectory) (Spectrum, error) {
	c, dt, err := VelocityAutocorrelation(traj)
	if err != nil {
		return Spectrum{}, err
	}
	ps := PowerSpectrum(c)
	n := nextPow2(len(c))

	s := Spectrum{
		Wavenumbers: make([]float64, len(ps)),
		Intensity:   ps,
	}
	for k := range ps {
		thz := float64(k) / (float64(n) * dt)
		s.Wavenumbers[k] = thz * WavenumberPerTHz
	}
	return s, nil
}
