package config

import "sort"

var Presets = map[string]map[string]*Config{
	"argon": {
		"cold": {
			System:        SystemConfig{Kind: "argon", Atoms: 64, Spacing: 0.38},
			Integrator:    "langevin",
			Timestep:      "2 fs",
			FrameInterval: "0.1 ps",
			Duration:      "10 ps",
			Temperature:   "50 K",
			CollisionRate: "1 /ps",
			Executor:      "local",
			Minimize:      200,
		},
		"warm": {
			System:        SystemConfig{Kind: "argon", Atoms: 64, Spacing: 0.38, InitialTemperature: "120 K"},
			Integrator:    "verlet",
			Timestep:      "2 fs",
			FrameInterval: "0.1 ps",
			Duration:      "5 ps",
			Temperature:   "120 K",
			CollisionRate: "1 /ps",
			Executor:      "local",
			Seed:          7,
		},
	},
	"chain": {
		"relax": {
			System:        SystemConfig{Kind: "chain", Atoms: 12, Spacing: 0.152},
			Integrator:    "langevin",
			Timestep:      "1 fs",
			FrameInterval: "50 fs",
			Duration:      "5 ps",
			Temperature:   "300 K",
			CollisionRate: "5 /ps",
			Executor:      "local",
			Minimize:      500,
		},
		"hot": {
			System:        SystemConfig{Kind: "chain", Atoms: 12, Spacing: 0.152, InitialTemperature: "600 K"},
			Integrator:    "langevin",
			Timestep:      "0.5 fs",
			FrameInterval: "25 fs",
			Duration:      "2 ps",
			Temperature:   "600 K",
			CollisionRate: "2 /ps",
			Executor:      "local",
			Seed:          11,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Name = system + "/" + preset
	return &c
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetSystems lists the systems that have presets.
func PresetSystems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
