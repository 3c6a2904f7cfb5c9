// Package protocol runs multi-stage dynamics protocols and replica sweeps
// on a single molecule.
package protocol

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var ErrEmptyProtocol = errors.New("protocol: no stages")

// Protocol is a named sequence of stages applied to one molecule.
type Protocol struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Stages      []Stage `yaml:"stages"`
}

// Stage is one step of a protocol. Empty fields inherit the value of the
// previous stage. A stage without an integrator only minimizes.
type Stage struct {
	Name          string `yaml:"name"`
	Integrator    string `yaml:"integrator,omitempty"`
	Duration      string `yaml:"duration,omitempty"`
	Timestep      string `yaml:"timestep,omitempty"`
	FrameInterval string `yaml:"frame_interval,omitempty"`
	Temperature   string `yaml:"temperature,omitempty"`
	CollisionRate string `yaml:"collision_rate,omitempty"`

	// Minimize is the number of minimizer iterations run before dynamics.
	Minimize int `yaml:"minimize,omitempty"`
}

// DefaultStage supplies the values a protocol's first stage may omit.
func DefaultStage() Stage {
	return Stage{
		Duration:      "1 ps",
		Timestep:      "2 fs",
		FrameInterval: "0.1 ps",
		Temperature:   "298 K",
		CollisionRate: "1/ps",
	}
}

// Load loads a protocol from a YAML file
func Load(path string) (*Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Protocol, error) {
	var p Protocol
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("protocol: %w", err)
	}
	return &p, nil
}

// inherit fills empty fields of s from prev. Minimize is never inherited.
func (s Stage) inherit(prev Stage) Stage {
	if s.Duration == "" {
		s.Duration = prev.Duration
	}
	if s.Timestep == "" {
		s.Timestep = prev.Timestep
	}
	if s.FrameInterval == "" {
		s.FrameInterval = prev.FrameInterval
	}
	if s.Temperature == "" {
		s.Temperature = prev.Temperature
	}
	if s.CollisionRate == "" {
		s.CollisionRate = prev.CollisionRate
	}
	return s
}

// setup is the resolved, comparable form of a dynamics stage.
type setup struct {
	kind       string
	params     integrators.Params
	thermostat integrators.Thermostat
}

func (s Stage) resolve() (setup, units.Time, error) {
	var (
		st  = setup{kind: s.Integrator, thermostat: integrators.DefaultThermostat()}
		dur units.Time
		err error
	)
	if dur, err = units.ParseTime(s.Duration); err != nil {
		return st, 0, fmt.Errorf("duration: %w", err)
	}
	if st.params.Timestep, err = units.ParseTime(s.Timestep); err != nil {
		return st, 0, fmt.Errorf("timestep: %w", err)
	}
	if st.params.FrameInterval, err = units.ParseTime(s.FrameInterval); err != nil {
		return st, 0, fmt.Errorf("frame_interval: %w", err)
	}
	if err := st.params.Validate(); err != nil {
		return st, 0, err
	}
	if s.Integrator != integrators.KindLangevin {
		// Thermostat settings do not distinguish non-thermostatted setups.
		st.thermostat = integrators.Thermostat{}
		return st, dur, nil
	}
	if s.Temperature != "" {
		if st.thermostat.Temperature, err = units.ParseTemperature(s.Temperature); err != nil {
			return st, 0, fmt.Errorf("temperature: %w", err)
		}
	}
	if s.CollisionRate != "" {
		if st.thermostat.CollisionRate, err = units.ParseRate(s.CollisionRate); err != nil {
			return st, 0, fmt.Errorf("collision_rate: %w", err)
		}
	}
	return st, dur, st.thermostat.Validate()
}

// Validate resolves every stage against defaults the way Run would.
func (p *Protocol) Validate(defaults Stage) error {
	if len(p.Stages) == 0 {
		return ErrEmptyProtocol
	}
	prev := defaults
	for i, s := range p.Stages {
		s = s.inherit(prev)
		prev = s
		if s.Minimize < 0 {
			return fmt.Errorf("protocol: stage %d (%s): negative minimize", i+1, s.Name)
		}
		if s.Integrator == "" {
			if s.Minimize == 0 {
				return fmt.Errorf("protocol: stage %d (%s): nothing to do", i+1, s.Name)
			}
			continue
		}
		if s.Integrator != integrators.KindVerlet && s.Integrator != integrators.KindLangevin {
			return fmt.Errorf("protocol: stage %d (%s): %w: %q", i+1, s.Name, integrators.ErrUnknownKind, s.Integrator)
		}
		if _, _, err := s.resolve(); err != nil {
			return fmt.Errorf("protocol: stage %d (%s): %w", i+1, s.Name, err)
		}
	}
	return nil
}
