package config

import "sort"

// Presets are the curves and noisy runs reported for H2 and LiH. Each one
// starts from DefaultConfig, so sampling settings are always usable.
var Presets = map[string]*Config{
	"h2-pec": preset(func(c *Config) {
		c.Molecule = "H2"
		c.RMin, c.RMax, c.RStep = Float(0.3), Float(2.5), 0.1
		c.Mapping = "jw"
		c.Optimizer = "SLSQP"
	}),
	"h2-parity": preset(func(c *Config) {
		c.Molecule = "H2"
		c.RMin, c.RMax, c.RStep = Float(0.3), Float(2.5), 0.1
		c.Mapping = "parity"
		c.Optimizer = "SLSQP"
	}),
	"lih-pec": preset(func(c *Config) {
		c.Molecule = "LiH"
		c.RMin, c.RMax, c.RStep = Float(0.8), Float(3.0), 0.2
		c.FreezeCore, c.Active = true, "2e3o"
		c.Mapping = "parity"
		c.Optimizer = "SLSQP"
	}),
	"h2-noisy": preset(func(c *Config) {
		c.Molecule = "H2"
		c.R = Float(0.735)
		c.Mapping = "jw"
		c.Backend, c.Optimizer = "noisy", "SPSA"
	}),
	"lih-noisy": preset(func(c *Config) {
		c.Molecule = "LiH"
		c.R = Float(1.6)
		c.FreezeCore, c.Active = true, "2e2o"
		c.Mapping = "parity"
		c.Backend, c.Optimizer = "noisy", "SPSA"
	}),
}

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
