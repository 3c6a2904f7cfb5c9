package integrators

import (
	"fmt"

	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// Params are shared by every integration scheme.
type Params struct {
	Timestep      units.Time `json:"timestep" yaml:"timestep"`
	FrameInterval units.Time `json:"frame_interval" yaml:"frame_interval"`
}

func DefaultParams() Params {
	return Params{
		Timestep:      1 * units.Femtosecond,
		FrameInterval: 1 * units.Picosecond,
	}
}

func (p Params) Validate() error {
	if p.Timestep <= 0 {
		return fmt.Errorf("%w: %s", units.ErrTimestep, p.Timestep)
	}
	if p.FrameInterval < 0 {
		return fmt.Errorf("%w: frame interval %s", units.ErrDuration, p.FrameInterval)
	}
	return nil
}

// FrameSteps is the reporter interval in steps, at least one.
func (p Params) FrameSteps() int {
	n, err := units.TimeToSteps(p.FrameInterval, p.Timestep)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Thermostat holds temperature-coupling parameters for schemes that
// sample a canonical ensemble.
type Thermostat struct {
	Temperature   units.Temperature `json:"temperature" yaml:"temperature"`
	CollisionRate units.Rate        `json:"collision_rate" yaml:"collision_rate"`
}

func DefaultThermostat() Thermostat {
	return Thermostat{Temperature: 298, CollisionRate: 1}
}

func (t Thermostat) Validate() error {
	if t.Temperature < 0 {
		return fmt.Errorf("%w: temperature %s", ErrThermostat, t.Temperature)
	}
	if t.CollisionRate <= 0 {
		return fmt.Errorf("%w: collision rate %s", ErrThermostat, t.CollisionRate)
	}
	return nil
}
