package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shiva16/molecular-design-toolkit/internal/integrators"
	"github.com/shiva16/molecular-design-toolkit/internal/models"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

const (
	DefaultSystem        = "argon"
	DefaultAtoms         = 27
	DefaultSpacing       = 0.38 // nm
	DefaultBondLength    = 0.152
	DefaultIntegrator    = integrators.KindLangevin
	DefaultTimestep      = "2 fs"
	DefaultFrameInterval = "0.1 ps"
	DefaultDuration      = "10 ps"
	DefaultTemperature   = "300 K"
	DefaultCollisionRate = "1 /ps"
	DefaultExecutor      = "local"
)

type Config struct {
	Name          string        `yaml:"name,omitempty"`
	System        SystemConfig  `yaml:"system"`
	Model         models.Params `yaml:"model"`
	Integrator    string        `yaml:"integrator"`
	Timestep      string        `yaml:"timestep"`
	FrameInterval string        `yaml:"frame_interval"`
	Duration      string        `yaml:"duration"`
	Temperature   string        `yaml:"temperature"`
	CollisionRate string        `yaml:"collision_rate"`
	Seed          int64         `yaml:"seed"`
	Executor      string        `yaml:"executor"`
	Workers       int           `yaml:"workers"`
	// Minimize is the number of minimizer iterations run before dynamics.
	// Zero skips minimization.
	Minimize int `yaml:"minimize"`
}

type SystemConfig struct {
	Kind    string  `yaml:"kind"`
	Atoms   int     `yaml:"atoms"`
	Spacing float64 `yaml:"spacing"`
	File    string  `yaml:"file,omitempty"`
	// InitialTemperature seeds Maxwell-Boltzmann velocities when set.
	InitialTemperature string `yaml:"initial_temperature,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Kind:    DefaultSystem,
			Atoms:   DefaultAtoms,
			Spacing: DefaultSpacing,
		},
		Integrator:    DefaultIntegrator,
		Timestep:      DefaultTimestep,
		FrameInterval: DefaultFrameInterval,
		Duration:      DefaultDuration,
		Temperature:   DefaultTemperature,
		CollisionRate: DefaultCollisionRate,
		Executor:      DefaultExecutor,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolved holds the unit-bearing fields of a Config parsed into typed
// quantities.
type Resolved struct {
	Params             integrators.Params
	Thermostat         integrators.Thermostat
	Duration           units.Time
	InitialTemperature units.Temperature
}

func (c *Config) Resolve() (Resolved, error) {
	var r Resolved
	var err error
	if r.Params.Timestep, err = units.ParseTime(c.Timestep); err != nil {
		return r, fmt.Errorf("config: timestep: %w", err)
	}
	if r.Params.FrameInterval, err = units.ParseTime(c.FrameInterval); err != nil {
		return r, fmt.Errorf("config: frame_interval: %w", err)
	}
	if r.Duration, err = units.ParseTime(c.Duration); err != nil {
		return r, fmt.Errorf("config: duration: %w", err)
	}
	if r.Thermostat.Temperature, err = units.ParseTemperature(c.Temperature); err != nil {
		return r, fmt.Errorf("config: temperature: %w", err)
	}
	if r.Thermostat.CollisionRate, err = units.ParseRate(c.CollisionRate); err != nil {
		return r, fmt.Errorf("config: collision_rate: %w", err)
	}
	if c.System.InitialTemperature != "" {
		if r.InitialTemperature, err = units.ParseTemperature(c.System.InitialTemperature); err != nil {
			return r, fmt.Errorf("config: initial_temperature: %w", err)
		}
	}
	return r, nil
}

// Validate checks every field that Build would otherwise reject later.
func (c *Config) Validate() error {
	r, err := c.Resolve()
	if err != nil {
		return err
	}
	if err := r.Params.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if r.Duration < 0 {
		return fmt.Errorf("config: %w", units.ErrDuration)
	}
	switch c.Integrator {
	case integrators.KindVerlet:
	case integrators.KindLangevin:
		if err := r.Thermostat.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	default:
		return fmt.Errorf("config: %w: %q", integrators.ErrUnknownKind, c.Integrator)
	}
	switch c.System.Kind {
	case "argon", "chain":
		if c.System.Atoms <= 0 {
			return fmt.Errorf("config: system needs a positive atom count, got %d", c.System.Atoms)
		}
		if c.System.Spacing <= 0 {
			return fmt.Errorf("config: system needs a positive spacing, got %g", c.System.Spacing)
		}
	case "xyz":
		if c.System.File == "" {
			return fmt.Errorf("config: xyz system needs a file")
		}
	default:
		return fmt.Errorf("config: unknown system kind %q", c.System.Kind)
	}
	if c.Minimize < 0 {
		return fmt.Errorf("config: minimize must not be negative, got %d", c.Minimize)
	}
	return nil
}

// BuildMolecule creates the configured molecule, attaches a force field and
// assigns initial velocities.
func (c *Config) BuildMolecule() (*mol.Molecule, error) {
	r, err := c.Resolve()
	if err != nil {
		return nil, err
	}

	var m *mol.Molecule
	switch c.System.Kind {
	case "argon":
		m, err = mol.ArgonCluster(c.System.Atoms, c.System.Spacing)
	case "chain":
		m, err = mol.BeadChain(c.System.Atoms, c.System.Spacing)
	case "xyz":
		var f *os.File
		if f, err = os.Open(c.System.File); err != nil {
			return nil, err
		}
		defer f.Close()
		m, err = mol.ReadXYZ(f)
	default:
		err = fmt.Errorf("config: unknown system kind %q", c.System.Kind)
	}
	if err != nil {
		return nil, err
	}

	models.NewForceField(m, c.Model)
	if r.InitialTemperature > 0 {
		m.AssignVelocities(r.InitialTemperature, c.Seed)
	}
	return m, nil
}

// BuildIntegrator creates the configured integrator for m.
func (c *Config) BuildIntegrator(m *mol.Molecule, opts ...integrators.Option) (integrators.Integrator, error) {
	r, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	if c.Seed != 0 {
		opts = append(opts, integrators.WithSeed(c.Seed))
	}
	return integrators.New(c.Integrator, m, r.Params, r.Thermostat, opts...)
}
