// Package units defines the unit system shared by the engine and the host
// molecular model.
//
// Internally every quantity is a float64 in the engine's native units:
//
//   - time: picoseconds
//   - length: nanometers
//   - mass: daltons (g/mol)
//   - energy: kJ/mol
//   - temperature: kelvin
//
// Named types exist only for quantities that cross configuration boundaries
// (timesteps, temperatures, collision rates), so they can be parsed from and
// rendered to human-readable strings such as "2 fs" or "300 K".
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BoltzmannKJ is the Boltzmann constant in kJ/(mol K).
const BoltzmannKJ = 0.00831446261815324

// AngstromPerNM converts nanometers to angstroms.
const AngstromPerNM = 10.0

// Time is a duration of simulated time in picoseconds.
type Time float64

const (
	Femtosecond Time = 1e-3
	Picosecond  Time = 1
	Nanosecond  Time = 1e3
)

// Temperature is an absolute temperature in kelvin.
type Temperature float64

// Rate is a frequency in 1/ps, used for thermostat collision rates.
type Rate float64

var (
	ErrBadQuantity = errors.New("units: malformed quantity")
	ErrBadUnit     = errors.New("units: unknown unit")
	ErrTimestep    = errors.New("units: timestep must be positive")
	ErrDuration    = errors.New("units: duration out of range")
)

var timeUnits = map[string]Time{
	"fs":          Femtosecond,
	"femtosecond": Femtosecond,
	"ps":          Picosecond,
	"picosecond":  Picosecond,
	"ns":          Nanosecond,
	"nanosecond":  Nanosecond,
}

func (t Time) String() string {
	abs := math.Abs(float64(t))
	switch {
	case abs != 0 && abs < float64(Picosecond):
		return formatFloat(float64(t/Femtosecond)) + " fs"
	case abs >= float64(Nanosecond):
		return formatFloat(float64(t/Nanosecond)) + " ns"
	default:
		return formatFloat(float64(t)) + " ps"
	}
}

func (t Temperature) String() string { return formatFloat(float64(t)) + " K" }

func (r Rate) String() string { return formatFloat(float64(r)) + " /ps" }

// KT returns the thermal energy k_B*T in kJ/mol.
func (t Temperature) KT() float64 { return BoltzmannKJ * float64(t) }

// ParseTime parses strings like "2 fs", "0.5ps" or "10 ns". A bare number is
// taken to be in picoseconds.
func ParseTime(s string) (Time, error) {
	v, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	if unit == "" {
		return Time(v), nil
	}
	scale, ok := timeUnits[strings.TrimSuffix(unit, "s")]
	if !ok {
		scale, ok = timeUnits[unit]
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadUnit, unit)
	}
	return Time(v) * scale, nil
}

// ParseTemperature parses "300 K" or a bare number of kelvin.
func ParseTemperature(s string) (Temperature, error) {
	v, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "", "k", "kelvin":
		return Temperature(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadUnit, unit)
}

// ParseRate parses "1 /ps", "1/ps", "10 /ns" or a bare number in 1/ps.
func ParseRate(s string) (Rate, error) {
	v, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	unit = strings.TrimPrefix(strings.ReplaceAll(unit, " ", ""), "/")
	if unit == "" {
		return Rate(v), nil
	}
	scale, ok := timeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadUnit, unit)
	}
	return Rate(v / float64(scale)), nil
}

// TimeToSteps converts a duration to a whole number of integration steps,
// rounding to the nearest step (half away from zero). The final simulated time
// therefore differs from the request by at most half a timestep.
func TimeToSteps(duration, timestep Time) (int, error) {
	if timestep <= 0 {
		return 0, fmt.Errorf("%w, got %v", ErrTimestep, timestep)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%w, got %v", ErrDuration, duration)
	}
	steps := math.Round(float64(duration / timestep))
	if math.IsNaN(steps) || steps >= math.MaxInt {
		return 0, fmt.Errorf("%w, %v is too many steps of %v", ErrDuration, duration, timestep)
	}
	return int(steps), nil
}

func splitQuantity(s string) (float64, string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, "", fmt.Errorf("%w: empty", ErrBadQuantity)
	}
	i := 0
	for i < len(s) && strings.ContainsRune("0123456789.+-eE", rune(s[i])) {
		// an 'e' followed by a letter starts the unit, not an exponent
		if (s[i] == 'e' || s[i] == 'E') && (i+1 >= len(s) || !strings.ContainsRune("0123456789+-", rune(s[i+1]))) {
			break
		}
		i++
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrBadQuantity, s)
	}
	return v, strings.TrimSpace(s[i:]), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
